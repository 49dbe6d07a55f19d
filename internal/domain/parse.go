package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Physical sanity bounds for advisory validation. Values outside these are
// rejected as DataError, never clamped; clamping is reserved for valid
// sub-factor combinations inside the score functions.
const (
	maxIntensityKt = 200 // strongest recorded TC (Patricia 2015) was 185 kt
	minPressureMb  = 850 // Typhoon Tip bottomed out at 870 mb
	maxPressureMb  = 1100
	minSSTCelsius  = -2 // freezing point of seawater
	maxSSTCelsius  = 40
	maxShearKt     = 150
)

// ParseRawObservation deserializes and validates a RawEvent's value into a
// StormObservation. Malformed JSON and physically insane values both surface
// as DataError so the pipeline can skip the cycle and report upward.
func ParseRawObservation(raw RawEvent) (StormObservation, error) {
	var adv RawAdvisory
	if err := json.Unmarshal(raw.Value, &adv); err != nil {
		return StormObservation{}, fmt.Errorf("parse raw advisory: %w",
			NewDataError(string(raw.Key), raw.Timestamp, "payload", err.Error()))
	}
	return adv.Validate()
}

// Validate converts a RawAdvisory into a StormObservation, enforcing the
// physical sanity bounds. The first offending field is reported; there is no
// point accumulating errors the scheduler will only log once.
func (a RawAdvisory) Validate() (StormObservation, error) {
	ts, err := time.Parse(time.RFC3339, a.AdvisoryTime)
	fail := func(field, reason string) (StormObservation, error) {
		return StormObservation{}, NewDataError(a.StormID, ts, field, reason)
	}

	if a.StormID == "" {
		return fail("id", "missing storm identifier")
	}
	if a.AdvisoryTime == "" || err != nil {
		return fail("advisoryTime", fmt.Sprintf("missing or invalid RFC 3339 timestamp %q", a.AdvisoryTime))
	}
	if a.Intensity == nil {
		return fail("intensity", "missing")
	}
	if *a.Intensity < 0 || *a.Intensity > maxIntensityKt {
		return fail("intensity", fmt.Sprintf("%.1f kt outside [0, %d]", *a.Intensity, maxIntensityKt))
	}
	if a.Pressure != nil && (*a.Pressure < minPressureMb || *a.Pressure > maxPressureMb) {
		return fail("pressure", fmt.Sprintf("%.1f mb outside [%d, %d]", *a.Pressure, minPressureMb, maxPressureMb))
	}
	if a.Latitude == nil || a.Longitude == nil {
		return fail("position", "missing latitude/longitude")
	}
	if *a.Latitude < -90 || *a.Latitude > 90 {
		return fail("latitude", fmt.Sprintf("%.2f outside [-90, 90]", *a.Latitude))
	}
	if *a.Longitude < -180 || *a.Longitude > 180 {
		return fail("longitude", fmt.Sprintf("%.2f outside [-180, 180]", *a.Longitude))
	}

	obs := StormObservation{
		StormID:           a.StormID,
		StormName:         a.StormName,
		AdvisoryNumber:    a.AdvisoryNumber,
		Timestamp:         ts.UTC(),
		Classification:    a.Classification,
		IntensityKt:       *a.Intensity,
		PressureMb:        a.Pressure,
		Latitude:          *a.Latitude,
		Longitude:         *a.Longitude,
		MovementDirection: a.MovementDirection,
		MovementSpeedKt:   a.MovementSpeed,
		ForecastKt:        a.ForecastIntensity,
	}

	if a.Environment != nil {
		env, err := a.Environment.validate(a.StormID, ts)
		if err != nil {
			return StormObservation{}, err
		}
		obs.Env = env
	}
	return obs, nil
}

func (e RawEnvironment) validate(stormID string, ts time.Time) (EnvironmentSample, error) {
	fail := func(field, reason string) (EnvironmentSample, error) {
		return EnvironmentSample{}, NewDataError(stormID, ts, field, reason)
	}

	if e.SST == nil || e.WindShear == nil || e.PotentialIntensity == nil {
		return fail("environment", "block present but incomplete")
	}
	if *e.SST < minSSTCelsius || *e.SST > maxSSTCelsius {
		return fail("environment.sst", fmt.Sprintf("%.1f °C outside [%d, %d]", *e.SST, minSSTCelsius, maxSSTCelsius))
	}
	if *e.WindShear < 0 || *e.WindShear > maxShearKt {
		return fail("environment.windShear", fmt.Sprintf("%.1f kt outside [0, %d]", *e.WindShear, maxShearKt))
	}
	if *e.PotentialIntensity <= 0 {
		return fail("environment.potentialIntensity", fmt.Sprintf("non-positive ceiling %.1f kt", *e.PotentialIntensity))
	}

	source := e.Source
	if source == "" {
		source = "unspecified"
	}
	return EnvironmentSample{
		SSTCelsius:           *e.SST,
		WindShearKt:          *e.WindShear,
		PotentialIntensityKt: *e.PotentialIntensity,
		Source:               source,
	}, nil
}
