package constraint

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Calibration gathers every threshold and weight of the constraint engine in
// one place so recalibration touches a single structure. Defaults come from
// the v2 calibration against the 2020-2025 Atlantic seasons; individual
// values can be overridden from a YAML file.
type Calibration struct {
	// Alpha is the exponential-smoothing weight on the newest raw score.
	// 0.7 favors responsiveness over memory: advisory cycles are already
	// six hours apart.
	Alpha float64 `yaml:"alpha"`

	// Regime thresholds on smoothed scores.
	RIHeadroom        float64 `yaml:"ri_headroom"`         // I above this
	RIEnvironment     float64 `yaml:"ri_environment"`      // R above this
	RIStructure       float64 `yaml:"ri_structure"`        // S above this
	PeakHeadroom      float64 `yaml:"peak_headroom"`       // I below this
	CollapseStructure float64 `yaml:"collapse_structure"`  // S below this
	CollapseDecline   float64 `yaml:"collapse_decline"`    // relative S drop
	GradientTolerance float64 `yaml:"gradient_tolerance"`  // |ΔL| noise floor

	// Relational sub-factor weights and normalization constants.
	ShearWeight    float64 `yaml:"shear_weight"`
	SSTWeight      float64 `yaml:"sst_weight"`
	LatitudeWeight float64 `yaml:"latitude_weight"`
	ShearCeilingKt float64 `yaml:"shear_ceiling_kt"` // shear at which favorability hits 0
	SSTFloorC      float64 `yaml:"sst_floor_c"`      // warm-water threshold
	SSTRangeC      float64 `yaml:"sst_range_c"`      // degrees above floor for full favorability
	LatitudeCenter float64 `yaml:"latitude_center"`  // optimal absolute latitude
	LatitudeRange  float64 `yaml:"latitude_range"`   // degrees from center to zero favorability

	// Semantic sub-factor weights and normalization constants.
	OrganizationWeight  float64 `yaml:"organization_weight"`
	PressureWindWeight  float64 `yaml:"pressure_wind_weight"`
	ShearImpactWeight   float64 `yaml:"shear_impact_weight"`
	ShearImpactKt       float64 `yaml:"shear_impact_kt"`       // shear at which structure fully degrades
	PressureWindScaleMb float64 `yaml:"pressure_wind_scale_mb"` // deviation for zero consistency
}

// DefaultCalibration returns the operational defaults.
func DefaultCalibration() Calibration {
	return Calibration{
		Alpha: 0.7,

		RIHeadroom:        0.65,
		RIEnvironment:     0.70,
		RIStructure:       0.60,
		PeakHeadroom:      0.35,
		CollapseStructure: 0.35,
		CollapseDecline:   0.15,
		GradientTolerance: 0.005,

		ShearWeight:    0.5,
		SSTWeight:      0.3,
		LatitudeWeight: 0.2,
		ShearCeilingKt: 35,
		SSTFloorC:      24,
		SSTRangeC:      6,
		LatitudeCenter: 22,
		LatitudeRange:  25,

		OrganizationWeight:  0.4,
		PressureWindWeight:  0.3,
		ShearImpactWeight:   0.3,
		ShearImpactKt:       40,
		PressureWindScaleMb: 30,
	}
}

// Validate checks internal consistency: fractions in range, weight groups
// summing to one, positive normalization constants.
func (c Calibration) Validate() error {
	unitInterval := map[string]float64{
		"alpha":              c.Alpha,
		"ri_headroom":        c.RIHeadroom,
		"ri_environment":     c.RIEnvironment,
		"ri_structure":       c.RIStructure,
		"peak_headroom":      c.PeakHeadroom,
		"collapse_structure": c.CollapseStructure,
		"collapse_decline":   c.CollapseDecline,
	}
	for name, v := range unitInterval {
		if v <= 0 || v >= 1 {
			return fmt.Errorf("calibration: %s must be in (0, 1), got %g", name, v)
		}
	}
	if c.GradientTolerance <= 0 || c.GradientTolerance >= 0.1 {
		return fmt.Errorf("calibration: gradient_tolerance must be in (0, 0.1), got %g", c.GradientTolerance)
	}

	if s := c.ShearWeight + c.SSTWeight + c.LatitudeWeight; math.Abs(s-1) > 1e-9 {
		return fmt.Errorf("calibration: relational weights sum to %g, want 1", s)
	}
	if s := c.OrganizationWeight + c.PressureWindWeight + c.ShearImpactWeight; math.Abs(s-1) > 1e-9 {
		return fmt.Errorf("calibration: semantic weights sum to %g, want 1", s)
	}

	positive := map[string]float64{
		"shear_ceiling_kt":       c.ShearCeilingKt,
		"sst_range_c":            c.SSTRangeC,
		"latitude_range":         c.LatitudeRange,
		"shear_impact_kt":        c.ShearImpactKt,
		"pressure_wind_scale_mb": c.PressureWindScaleMb,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("calibration: %s must be positive, got %g", name, v)
		}
	}
	return nil
}

// LoadCalibration reads a YAML calibration file layered over the defaults:
// fields absent from the file keep their default values.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()

	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("read calibration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return Calibration{}, fmt.Errorf("parse calibration file %s: %w", path, err)
	}
	if err := cal.Validate(); err != nil {
		return Calibration{}, fmt.Errorf("calibration file %s: %w", path, err)
	}
	return cal, nil
}
