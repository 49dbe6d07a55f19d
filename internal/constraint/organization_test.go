package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
)

func TestOrganizationScore(t *testing.T) {
	tests := []struct {
		classification string
		want           float64
	}{
		{"HU", 0.70},
		{"Hurricane Milton", 0.70},
		{"Category 5 Hurricane", 0.95},
		{"CAT 4", 0.90},
		{"Major Hurricane", 0.85},
		{"Category 2 Hurricane", 0.75},
		{"TS", 0.55},
		{"Tropical Storm", 0.55},
		{"STS", 0.55},
		{"TD", 0.35},
		{"tropical depression", 0.35},
		{"STD", 0.35},
		{"PTC", 0.15},
		{"EX", 0.15},
		{"Post-Tropical Cyclone", 0.15},
		// Must not match the TS code embedded in "REMNANTS".
		{"Remnants of Ida", 0.15},
		{"", 0.50},
		{"INVEST", 0.50},
	}

	for _, tt := range tests {
		t.Run(tt.classification, func(t *testing.T) {
			assert.InDelta(t, tt.want, constraint.OrganizationScore(tt.classification), 1e-9)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, constraint.IsTerminal("PTC"))
	assert.True(t, constraint.IsTerminal("EX"))
	assert.True(t, constraint.IsTerminal("Post-Tropical Cyclone"))
	assert.True(t, constraint.IsTerminal("Remnants of Ida"))
	assert.True(t, constraint.IsTerminal("DISSIPATED"))

	assert.False(t, constraint.IsTerminal("HU"))
	assert.False(t, constraint.IsTerminal("TS"))
	assert.False(t, constraint.IsTerminal(""))
}
