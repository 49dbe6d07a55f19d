package domain

import (
	"context"
	"time"
)

// RawAdvisory represents the flat JSON document published by the
// advisory-fetch collector for one storm and one advisory cycle.
type RawAdvisory struct {
	StormID           string          `json:"id"`
	StormName         string          `json:"name"`
	AdvisoryNumber    int             `json:"advisoryNumber"`
	AdvisoryTime      string          `json:"advisoryTime"` // RFC 3339
	Classification    string          `json:"classification"`
	Intensity         *float64        `json:"intensity"` // kt
	Pressure          *float64        `json:"pressure"`  // mb, optional
	Latitude          *float64        `json:"latitude"`
	Longitude         *float64        `json:"longitude"`
	MovementDirection string          `json:"movementDirection"`
	MovementSpeed     float64         `json:"movementSpeed"` // kt
	ForecastIntensity *float64        `json:"forecastIntensity24h,omitempty"`
	Environment       *RawEnvironment `json:"environment,omitempty"`
}

// RawEnvironment is the optional environmental block of a RawAdvisory.
type RawEnvironment struct {
	SST                *float64 `json:"sst"`                // °C
	WindShear          *float64 `json:"windShear"`          // kt
	PotentialIntensity *float64 `json:"potentialIntensity"` // kt
	Source             string   `json:"source"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// EnvironmentSample holds the environmental readings used by the score
// functions. Source is empty when no sample has been supplied yet.
type EnvironmentSample struct {
	SSTCelsius           float64 `json:"sst_celsius"`
	WindShearKt          float64 `json:"wind_shear_kt"`
	PotentialIntensityKt float64 `json:"potential_intensity_kt"`
	Source               string  `json:"source"`
}

// HasData reports whether the sample was actually supplied, as opposed to
// being the zero value awaiting a fallback estimate.
func (e EnvironmentSample) HasData() bool { return e.Source != "" }

// StormObservation is the validated, strongly-typed input record for one
// advisory cycle. It is never mutated after creation.
type StormObservation struct {
	StormID           string            `json:"storm_id"`
	StormName         string            `json:"storm_name"`
	AdvisoryNumber    int               `json:"advisory_number"`
	Timestamp         time.Time         `json:"timestamp"`
	Classification    string            `json:"classification"`
	IntensityKt       float64           `json:"intensity_kt"`
	PressureMb        *float64          `json:"pressure_mb,omitempty"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	MovementDirection string            `json:"movement_direction,omitempty"`
	MovementSpeedKt   float64           `json:"movement_speed_kt,omitempty"`
	ForecastKt        *float64          `json:"forecast_intensity_24h_kt,omitempty"`
	Env               EnvironmentSample `json:"environment"`
}

// WithEnvironment returns a copy of the observation carrying the given
// environmental sample. The receiver is not modified.
func (o StormObservation) WithEnvironment(env EnvironmentSample) StormObservation {
	o.Env = env
	return o
}
