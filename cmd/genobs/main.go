// Command genobs generates synthetic advisory fixtures for the test suites
// and for local replay runs. It writes a JSON array of raw advisory documents
// in the source-topic format, tracing one of three canned life cycles through
// plausible intensity, pressure, and environment values.
//
// Usage:
//
//	go run ./cmd/genobs -profile ri -storm-id AL052024 -out data/mock/ri_storm.json
//	go run ./cmd/genobs -profile collapse -cycles 12 -out data/mock/collapse.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

var baseTime = time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)

// profile describes the shape of a synthetic storm life cycle. Each slice is
// indexed by advisory cycle and linearly resampled to the requested length.
type profile struct {
	name            string
	intensities     []float64 // kt
	shears          []float64 // kt
	ssts            []float64 // °C
	classifications []string
}

var profiles = map[string]profile{
	// Steady intensification in a favorable environment.
	"ri": {
		name:            "ri",
		intensities:     []float64{30, 35, 45, 60, 80, 100, 115},
		shears:          []float64{8, 7, 6, 6, 7, 8, 9},
		ssts:            []float64{29.5, 29.5, 29.4, 29.3, 29.2, 29.0, 28.8},
		classifications: []string{"TD", "TS", "TS", "TS", "HU", "HU", "HU"},
	},
	// Mature hurricane run over by rising shear and cooling water.
	"collapse": {
		name:            "collapse",
		intensities:     []float64{105, 110, 105, 90, 70, 50, 35},
		shears:          []float64{10, 12, 18, 26, 32, 36, 38},
		ssts:            []float64{28.8, 28.5, 27.8, 27.0, 26.2, 25.5, 25.0},
		classifications: []string{"HU", "HU", "HU", "HU", "TS", "TS", "TS"},
	},
	// Strong storm holding near its thermodynamic ceiling.
	"peak": {
		name:            "peak",
		intensities:     []float64{120, 130, 140, 145, 145, 140, 140},
		shears:          []float64{6, 6, 7, 8, 8, 9, 9},
		ssts:            []float64{29.8, 29.8, 29.7, 29.6, 29.5, 29.4, 29.3},
		classifications: []string{"HU", "HU", "HU", "HU", "HU", "HU", "HU"},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	profileName := flag.String("profile", "ri", "life cycle profile: ri, collapse, or peak")
	stormID := flag.String("storm-id", "AL092024", "storm identifier for the generated advisories")
	stormName := flag.String("storm-name", "SYNTHETIC", "storm name for the generated advisories")
	cycles := flag.Int("cycles", 7, "number of advisory cycles to generate")
	withEnv := flag.Bool("with-env", true, "include the environment block (omit to exercise climatology fallback)")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	p, ok := profiles[*profileName]
	if !ok {
		return fmt.Errorf("unknown profile %q: want ri, collapse, or peak", *profileName)
	}
	if *cycles < 2 {
		return fmt.Errorf("need at least 2 cycles, got %d", *cycles)
	}

	advisories := generate(p, *stormID, *stormName, *cycles, *withEnv)

	if err := writeJSON(*out, advisories); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d advisories (%s profile) to %s", len(advisories), p.name, *out)
	return nil
}

func generate(p profile, stormID, stormName string, cycles int, withEnv bool) []domain.RawAdvisory {
	advisories := make([]domain.RawAdvisory, 0, cycles)
	for i := 0; i < cycles; i++ {
		frac := float64(i) / float64(cycles-1)
		intensity := resample(p.intensities, frac)
		shear := resample(p.shears, frac)
		sst := resample(p.ssts, frac)
		classification := p.classifications[pick(len(p.classifications), frac)]

		// Track northwest at a steady clip, the usual Atlantic recurvature.
		lat := 14.0 + 12.0*frac
		lon := -45.0 - 20.0*frac
		pressure := 1013.0 - 0.9*intensity
		pi := 130.0 + (sst-27.0)*15.0

		adv := domain.RawAdvisory{
			StormID:           stormID,
			StormName:         stormName,
			AdvisoryNumber:    i + 1,
			AdvisoryTime:      baseTime.Add(time.Duration(i) * 6 * time.Hour).Format(time.RFC3339),
			Classification:    classification,
			Intensity:         ptr(intensity),
			Pressure:          ptr(pressure),
			Latitude:          ptr(lat),
			Longitude:         ptr(lon),
			MovementDirection: "NW",
			MovementSpeed:     12,
		}
		if i+4 < cycles {
			adv.ForecastIntensity = ptr(resample(p.intensities, float64(i+4)/float64(cycles-1)))
		}
		if withEnv {
			adv.Environment = &domain.RawEnvironment{
				SST:                ptr(sst),
				WindShear:          ptr(shear),
				PotentialIntensity: ptr(pi),
				Source:             "SHIPS",
			}
		}
		advisories = append(advisories, adv)
	}
	return advisories
}

// resample linearly interpolates a profile curve at fraction frac of its span.
func resample(curve []float64, frac float64) float64 {
	pos := frac * float64(len(curve)-1)
	i := int(pos)
	if i >= len(curve)-1 {
		return curve[len(curve)-1]
	}
	t := pos - float64(i)
	return curve[i]*(1-t) + curve[i+1]*t
}

func pick(n int, frac float64) int {
	i := int(frac * float64(n-1))
	if i > n-1 {
		return n - 1
	}
	return i
}

func ptr(v float64) *float64 { return &v }

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
