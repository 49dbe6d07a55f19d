package constraint

import (
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// Engine derives one ConstraintSnapshot per advisory cycle. It holds no
// per-storm state: the previous snapshot is an explicit argument, so the
// same engine serves every storm and historical replay produces identical
// results to live processing.
type Engine struct {
	cal Calibration
}

// NewEngine creates an engine with the given calibration.
func NewEngine(cal Calibration) *Engine {
	return &Engine{cal: cal}
}

// Calibration returns the engine's calibration.
func (e *Engine) Calibration() Calibration { return e.cal }

// Step computes the snapshot for one observation. prev is the immediately
// preceding snapshot of the same storm's timeline, or nil for the first
// cycle. No input from any earlier snapshot, or from the future, is used.
func (e *Engine) Step(obs domain.StormObservation, prev *domain.ConstraintSnapshot) (domain.ConstraintSnapshot, error) {
	raw, err := ComputeScores(obs, e.cal)
	if err != nil {
		return domain.ConstraintSnapshot{}, err
	}

	snap := domain.ConstraintSnapshot{
		StormID:       obs.StormID,
		StormName:     obs.StormName,
		Timestamp:     obs.Timestamp,
		RawIndicative: raw.Indicative,
		RawRelational: raw.Relational,
		RawSemantic:   raw.Semantic,
		Indicative:    e.smooth(raw.Indicative, prev, func(s *domain.ConstraintSnapshot) float64 { return s.Indicative }),
		Relational:    e.smooth(raw.Relational, prev, func(s *domain.ConstraintSnapshot) float64 { return s.Relational }),
		Semantic:      e.smooth(raw.Semantic, prev, func(s *domain.ConstraintSnapshot) float64 { return s.Semantic }),
		IntensityKt:   obs.IntensityKt,
		ForecastKt:    obs.ForecastKt,
		ProcessedAt:   domain.Now(),
	}

	// Admissibility is defined as the strict product of the smoothed scores:
	// a single near-zero factor dominates, modeling intensification as
	// requiring simultaneous favorability on all three axes.
	snap.Admissibility = snap.Indicative * snap.Relational * snap.Semantic

	if prev != nil {
		delta := snap.Admissibility - prev.Admissibility
		snap.Gradient = &delta
		snap.GradientHazard = delta < -e.cal.GradientTolerance
	}

	snap.Regime = e.Classify(snap, prev)
	snap.RefusalRisk = e.assessRefusalRisk(snap, prev)
	snap.Summary = Summary(snap)
	return snap, nil
}

// smooth applies exponential memory: alpha on the new raw value, the
// remainder on the previous smoothed value. The first observation of a
// timeline initializes the smoothed value to the raw value.
func (e *Engine) smooth(raw float64, prev *domain.ConstraintSnapshot, pick func(*domain.ConstraintSnapshot) float64) float64 {
	if prev == nil {
		return raw
	}
	return e.cal.Alpha*raw + (1-e.cal.Alpha)*pick(prev)
}

// assessRefusalRisk grades how constrained the storm is from admissibility
// and structural trend. Near-zero L is a refusal state: few or no
// intensification paths remain.
func (e *Engine) assessRefusalRisk(snap domain.ConstraintSnapshot, prev *domain.ConstraintSnapshot) domain.RefusalRisk {
	sDeclined := prev != nil && snap.Semantic < prev.Semantic*(1-e.cal.CollapseDecline)

	switch {
	case snap.Admissibility < 0.15 || (snap.Semantic < 0.25 && sDeclined):
		return domain.RiskCritical
	case snap.Admissibility < 0.25 || (snap.Semantic < 0.40 && sDeclined):
		return domain.RiskHigh
	case snap.Admissibility < 0.40:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}
