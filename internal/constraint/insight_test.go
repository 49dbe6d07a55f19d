package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

func TestSummary_Phrasing(t *testing.T) {
	snap := snapWith(0.75, 0.80, 0.85)
	snap.Regime = domain.RegimeStable

	got := constraint.Summary(snap)
	assert.Equal(t, "High thermodynamic headroom, highly favorable environment, well-organized structure. Regime: STABLE", got)
}

func TestSummary_LowEnd(t *testing.T) {
	snap := snapWith(0.10, 0.30, 0.20)
	snap.Regime = domain.RegimeCollapse

	got := constraint.Summary(snap)
	assert.Contains(t, got, "Very limited headroom")
	assert.Contains(t, got, "marginal environment")
	assert.Contains(t, got, "poorly organized")
	assert.Contains(t, got, "Regime: COLLAPSE")
}

func TestGenerateInsight_FirstSnapshot(t *testing.T) {
	snap := snapWith(0.70, 0.75, 0.65)
	snap.StormID = "AL092024"
	snap.StormName = "MILTON"
	snap.RefusalRisk = domain.RiskLow
	snap.Summary = constraint.Summary(snap)

	got := constraint.GenerateInsight(snap, nil, "")
	assert.Contains(t, got, "MILTON")
	assert.Contains(t, got, "insufficient history")
	assert.NotContains(t, got, "ΔL")
}

func TestGenerateInsight_RegimeTemplates(t *testing.T) {
	prev := snapWith(0.60, 0.60, 0.60)

	tests := []struct {
		regime domain.Regime
		want   string
	}{
		{domain.RegimeRICandidate, "rapid intensification"},
		{domain.RegimePeakLimited, "thermodynamic limits"},
		{domain.RegimeCollapse, "Structural collapse underway"},
		{domain.RegimeDecay, "losing ground"},
		{domain.RegimeStable, "stable"},
	}

	for _, tt := range tests {
		t.Run(string(tt.regime), func(t *testing.T) {
			snap := snapWith(0.50, 0.50, 0.50)
			snap.StormID = "AL092024"
			snap.Regime = tt.regime
			snap.RefusalRisk = domain.RiskModerate

			got := constraint.GenerateInsight(snap, &prev, "")
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestGenerateInsight_GradientDirection(t *testing.T) {
	prev := snapWith(0.60, 0.60, 0.60)

	declining := snapWith(0.50, 0.50, 0.50)
	declining.StormID = "AL092024"
	declining.Regime = domain.RegimeDecay
	delta := -0.091
	declining.Gradient = &delta
	declining.GradientHazard = true

	got := constraint.GenerateInsight(declining, &prev, "")
	assert.Contains(t, got, "declining")
	assert.Contains(t, got, "-0.091")

	improving := snapWith(0.70, 0.70, 0.70)
	improving.StormID = "AL092024"
	improving.Regime = domain.RegimeStable
	rise := 0.034
	improving.Gradient = &rise

	got = constraint.GenerateInsight(improving, &prev, "")
	assert.Contains(t, got, "improving")
	assert.Contains(t, got, "+0.034")
}

func TestGenerateInsight_AppendsForecast(t *testing.T) {
	prev := snapWith(0.60, 0.60, 0.60)
	snap := snapWith(0.65, 0.65, 0.65)
	snap.StormID = "AL092024"
	snap.Regime = domain.RegimeStable

	got := constraint.GenerateInsight(snap, &prev, "95 kt forecast at +24h (+20 kt change)")
	assert.Contains(t, got, "Official forecast: 95 kt forecast at +24h (+20 kt change)")
}

func TestGenerateInsight_FallsBackToStormID(t *testing.T) {
	snap := snapWith(0.50, 0.50, 0.50)
	snap.StormID = "AL092024"
	snap.RefusalRisk = domain.RiskModerate

	got := constraint.GenerateInsight(snap, nil, "")
	assert.Contains(t, got, "AL092024")
}
