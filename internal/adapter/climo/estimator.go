// Package climo supplies climatology-based environmental estimates for
// advisories that arrive without an environmental block. It is a fallback
// collaborator, deliberately crude: monthly-varying basin SST by latitude
// band, shear growing with distance from the deep tropics, and a simplified
// Emanuel potential-intensity relation calibrated against historical
// Atlantic hurricane peaks. Samples are tagged "climatology" so downstream
// consumers can see that estimated values, not measurements, fed the scores.
package climo

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

const (
	// Minimum SST for tropical development and the PI ramp above it.
	sstThresholdC  = 26.0
	piBaseKt       = 75.0
	piPerDegreeKt  = 18.0
	piFloorKt      = 70.0
	piCeilingKt    = 175.0 // Atlantic basin record territory; Patricia's 185 kt was East Pacific
	sstFloorC      = 24.0
	sstCeilingC    = 31.0
	shearBaseKt    = 8.0
	shearPerDegree = 0.6
	shearCeilingKt = 50.0
)

// Estimator derives environmental samples from position and season.
// It implements pipeline.EnvironmentEstimator.
type Estimator struct {
	cache *lruCache
}

// NewEstimator creates an estimator with an LRU cache of the given size.
// Storms move slowly relative to the 0.5° cache grid, so consecutive cycles
// usually hit.
func NewEstimator(cacheSize int) *Estimator {
	return &Estimator{cache: newLRUCache(cacheSize)}
}

// Estimate returns the climatological environmental sample for a position
// and time. Deterministic: the same rounded position and month always yield
// the same sample, which keeps historical replay bit-identical.
func (e *Estimator) Estimate(lat, lon float64, at time.Time) domain.EnvironmentSample {
	key := cacheKey(lat, lon, at)
	if sample, ok := e.cache.get(key); ok {
		return sample
	}

	sst := estimateSST(lat, at.UTC().Month())
	shear := estimateShear(lat)
	sample := domain.EnvironmentSample{
		SSTCelsius:           sst,
		WindShearKt:          shear,
		PotentialIntensityKt: potentialIntensity(sst, lat),
		Source:               "climatology",
	}
	e.cache.put(key, sample)
	return sample
}

// cacheKey buckets positions to a 0.5° grid and times to the month.
func cacheKey(lat, lon float64, at time.Time) string {
	return fmt.Sprintf("%.0f,%.0f,%d", lat*2, lon*2, at.UTC().Month())
}

// estimateSST approximates basin SST from latitude band and season. Bands
// peak in the 15-20°N Caribbean warm pool; the seasonal factor dampens
// winter and spring values.
func estimateSST(lat float64, month time.Month) float64 {
	absLat := math.Abs(lat)

	var base float64
	switch {
	case absLat < 15:
		base = 28.5
	case absLat < 20:
		base = 29.0
	case absLat < 25:
		base = 28.5
	case absLat < 30:
		base = 27.5
	default:
		base = 26.0
	}

	factor := 1.0
	switch month {
	case time.January, time.February, time.March:
		factor = 0.88
	case time.April, time.May:
		factor = 0.95
	}

	return math.Min(sstCeilingC, math.Max(sstFloorC, base*factor))
}

// estimateShear grows deep-layer shear with distance from 20°N, the
// climatological shear minimum during hurricane season.
func estimateShear(lat float64) float64 {
	shear := shearBaseKt + math.Abs(math.Abs(lat)-20)*shearPerDegree
	return math.Min(shearCeilingKt, math.Max(0, shear))
}

// potentialIntensity computes the thermodynamic ceiling via a simplified
// Emanuel relation: each degree of SST above the development threshold adds
// about 18 kt, discounted outside the optimal 15-25° latitude band.
func potentialIntensity(sst, lat float64) float64 {
	if sst < sstThresholdC {
		return piFloorKt
	}

	raw := piBaseKt + (sst-sstThresholdC)*piPerDegreeKt

	absLat := math.Abs(lat)
	var latFactor float64
	switch {
	case absLat < 15:
		latFactor = 0.85 // too close to the equator: weak Coriolis
	case absLat < 25:
		latFactor = 1.0
	case absLat < 30:
		latFactor = 0.90
	case absLat < 35:
		latFactor = 0.75
	default:
		latFactor = 0.60
	}

	return math.Min(piCeilingKt, math.Max(piFloorKt, raw*latFactor))
}
