package constraint

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// Summary composes the plain-English constraint phrase carried on every
// snapshot: headroom, environment, structure, regime.
func Summary(snap domain.ConstraintSnapshot) string {
	var headroom string
	switch {
	case snap.Indicative > 0.70:
		headroom = "High thermodynamic headroom"
	case snap.Indicative > 0.45:
		headroom = "Moderate headroom"
	case snap.Indicative > 0.25:
		headroom = "Low headroom, near ceiling"
	default:
		headroom = "Very limited headroom"
	}

	var env string
	switch {
	case snap.Relational > 0.75:
		env = "highly favorable environment"
	case snap.Relational > 0.55:
		env = "moderately favorable environment"
	default:
		env = "marginal environment"
	}

	var structure string
	switch {
	case snap.Semantic > 0.80:
		structure = "well-organized structure"
	case snap.Semantic > 0.60:
		structure = "moderately organized"
	case snap.Semantic > 0.40:
		structure = "showing structural stress"
	default:
		structure = "poorly organized"
	}

	return fmt.Sprintf("%s, %s, %s. Regime: %s", headroom, env, structure, snap.Regime)
}

// GenerateInsight produces the short diagnostic string for one cycle from
// the current snapshot, the previous snapshot (nil for the first cycle),
// and the externally supplied official forecast summary. It is a pure
// function of its arguments.
func GenerateInsight(snap domain.ConstraintSnapshot, prev *domain.ConstraintSnapshot, forecastSummary string) string {
	if prev == nil {
		return fmt.Sprintf("%s: insufficient history for trend analysis; first snapshot recorded with admissibility %.2f (%s risk). %s",
			stormLabel(snap), snap.Admissibility, snap.RefusalRisk, snap.Summary)
	}

	parts := []string{regimeInsight(snap)}

	if snap.GradientHazard {
		parts = append(parts, fmt.Sprintf(
			"Admissibility declining (ΔL=%+.3f): the storm is moving into less favorable constraint space.", *snap.Gradient))
	} else if snap.Gradient != nil && *snap.Gradient > 0 {
		parts = append(parts, fmt.Sprintf("Admissibility improving (ΔL=%+.3f).", *snap.Gradient))
	}

	if forecastSummary != "" {
		parts = append(parts, fmt.Sprintf("Official forecast: %s", forecastSummary))
	}

	return fmt.Sprintf("%s: %s", stormLabel(snap), strings.Join(parts, " "))
}

// regimeInsight selects the template for the assigned regime.
func regimeInsight(snap domain.ConstraintSnapshot) string {
	switch snap.Regime {
	case domain.RegimeRICandidate:
		return "All constraints aligned for rapid intensification within 24 hours."
	case domain.RegimePeakLimited:
		return "Approaching thermodynamic limits; peak intensity likely within 12-24 hours."
	case domain.RegimeCollapse:
		return "Structural collapse underway; expect abrupt weakening."
	case domain.RegimeDecay:
		return "All constraint axes losing ground; gradual weakening expected."
	default:
		return fmt.Sprintf("Constraint configuration stable (L=%.2f, %s risk).", snap.Admissibility, snap.RefusalRisk)
	}
}

func stormLabel(snap domain.ConstraintSnapshot) string {
	if snap.StormName != "" {
		return snap.StormName
	}
	return snap.StormID
}
