package constraint

import (
	"fmt"
	"math"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// RawScores holds the three unsmoothed constraint scores for one cycle.
type RawScores struct {
	Indicative float64
	Relational float64
	Semantic   float64
}

// ComputeScores maps a validated observation to raw I, R, S in [0,1].
// It is total and side-effect-free for valid inputs and fails with a
// DataError for anything outside physical sanity, notably a missing or
// non-positive potential-intensity ceiling. The caller is responsible for
// supplying a fallback environmental estimate before invoking.
func ComputeScores(obs domain.StormObservation, cal Calibration) (RawScores, error) {
	if obs.IntensityKt < 0 {
		return RawScores{}, domain.NewDataError(obs.StormID, obs.Timestamp,
			"intensity", fmt.Sprintf("negative wind speed %.1f kt", obs.IntensityKt))
	}
	if !obs.Env.HasData() || obs.Env.PotentialIntensityKt <= 0 {
		return RawScores{}, domain.NewDataError(obs.StormID, obs.Timestamp,
			"environment.potentialIntensity",
			fmt.Sprintf("missing or non-positive ceiling %.1f kt", obs.Env.PotentialIntensityKt))
	}
	if obs.Env.WindShearKt < 0 {
		return RawScores{}, domain.NewDataError(obs.StormID, obs.Timestamp,
			"environment.windShear", fmt.Sprintf("negative shear %.1f kt", obs.Env.WindShearKt))
	}

	return RawScores{
		Indicative: indicativeScore(obs, cal),
		Relational: relationalScore(obs, cal),
		Semantic:   semanticScore(obs, cal),
	}, nil
}

// indicativeScore measures thermodynamic headroom: 1 means far below the
// potential-intensity ceiling, 0 means at or above it.
func indicativeScore(obs domain.StormObservation, _ Calibration) float64 {
	return clamp01(1 - obs.IntensityKt/obs.Env.PotentialIntensityKt)
}

// relationalScore measures environmental favorability as a weighted blend of
// shear, SST, and latitude sub-factors. Each sub-factor is clamped to [0,1]
// before combination so no single bad input can push R out of range.
func relationalScore(obs domain.StormObservation, cal Calibration) float64 {
	shear := clamp01(1 - obs.Env.WindShearKt/cal.ShearCeilingKt)
	sst := clamp01((obs.Env.SSTCelsius - cal.SSTFloorC) / cal.SSTRangeC)
	lat := clamp01(1 - math.Abs(math.Abs(obs.Latitude)-cal.LatitudeCenter)/cal.LatitudeRange)

	return cal.ShearWeight*shear + cal.SSTWeight*sst + cal.LatitudeWeight*lat
}

// semanticScore approximates structural coherence. It is the most speculative
// of the three scores: a proxy blending the advisory classification, the
// pressure-wind relationship, and shear impact, pending a direct structural
// measurement (GOES-16 eye detection). Swapping in a higher-fidelity source
// means replacing this function only; the [RawScores] contract is unchanged.
func semanticScore(obs domain.StormObservation, cal Calibration) float64 {
	org := OrganizationScore(obs.Classification)
	pw := pressureWindScore(obs, cal)
	shearImpact := clamp01(1 - obs.Env.WindShearKt/cal.ShearImpactKt)

	return cal.OrganizationWeight*org + cal.PressureWindWeight*pw + cal.ShearImpactWeight*shearImpact
}

// pressureWindScore checks how tightly central pressure tracks the expected
// pressure-wind relationship (1015 mb minus 0.65 mb per kt). Well-organized
// storms sit close to the curve. Returns a neutral 0.5 when pressure is
// unreported.
func pressureWindScore(obs domain.StormObservation, cal Calibration) float64 {
	if obs.PressureMb == nil {
		return 0.5
	}
	expected := 1015 - obs.IntensityKt*0.65
	deviation := math.Abs(*obs.PressureMb - expected)
	return clamp01(1 - deviation/cal.PressureWindScaleMb)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
