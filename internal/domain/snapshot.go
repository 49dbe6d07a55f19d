package domain

import "time"

// Regime is the qualitative label summarizing a snapshot's constraint
// configuration. Exactly one regime is assigned per cycle.
type Regime string

const (
	RegimeRICandidate Regime = "RI_CANDIDATE"
	RegimePeakLimited Regime = "PEAK_LIMITED"
	RegimeCollapse    Regime = "COLLAPSE"
	RegimeDecay       Regime = "DECAY"
	RegimeStable      Regime = "STABLE"
)

// RefusalRisk grades how constrained the storm is: near-zero admissibility
// means few or no intensification paths remain.
type RefusalRisk string

const (
	RiskLow      RefusalRisk = "LOW"
	RiskModerate RefusalRisk = "MODERATE"
	RiskHigh     RefusalRisk = "HIGH"
	RiskCritical RefusalRisk = "CRITICAL"
)

// ConstraintSnapshot is the derived constraint state for one advisory cycle.
// Created exactly once per cycle and never mutated; corrections append a new
// snapshot rather than editing history.
type ConstraintSnapshot struct {
	StormID   string    `json:"storm_id"`
	StormName string    `json:"storm_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Raw scores straight out of the score functions.
	RawIndicative float64 `json:"raw_indicative"`
	RawRelational float64 `json:"raw_relational"`
	RawSemantic   float64 `json:"raw_semantic"`

	// Exponentially smoothed scores; the classifier and admissibility
	// read these, never the raw values.
	Indicative float64 `json:"indicative"`
	Relational float64 `json:"relational"`
	Semantic   float64 `json:"semantic"`

	// Admissibility is always the product of the three smoothed scores.
	Admissibility float64 `json:"admissibility"`

	// Gradient is admissibility minus the previous snapshot's admissibility.
	// Nil for the first snapshot of a timeline: undefined, not zero.
	Gradient       *float64 `json:"gradient,omitempty"`
	GradientHazard bool     `json:"gradient_hazard"`

	Regime      Regime      `json:"regime"`
	RefusalRisk RefusalRisk `json:"refusal_risk"`
	Summary     string      `json:"summary"`

	// Context carried from the source observation.
	IntensityKt float64  `json:"intensity_kt"`
	ForecastKt  *float64 `json:"forecast_intensity_24h_kt,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Declined reports whether all three smoothed scores declined relative to prev.
func (s ConstraintSnapshot) Declined(prev ConstraintSnapshot) bool {
	return s.Indicative < prev.Indicative &&
		s.Relational < prev.Relational &&
		s.Semantic < prev.Semantic
}
