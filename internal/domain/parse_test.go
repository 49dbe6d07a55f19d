package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func validAdvisory() domain.RawAdvisory {
	return domain.RawAdvisory{
		StormID:           "AL092024",
		StormName:         "MILTON",
		AdvisoryNumber:    12,
		AdvisoryTime:      "2024-09-01T12:00:00Z",
		Classification:    "HU",
		Intensity:         ptr(100),
		Pressure:          ptr(955),
		Latitude:          ptr(22.5),
		Longitude:         ptr(-88.0),
		MovementDirection: "NNE",
		MovementSpeed:     9,
		ForecastIntensity: ptr(120),
		Environment: &domain.RawEnvironment{
			SST:                ptr(29.5),
			WindShear:          ptr(8),
			PotentialIntensity: ptr(155),
			Source:             "SHIPS",
		},
	}
}

func TestRawAdvisory_Validate(t *testing.T) {
	obs, err := validAdvisory().Validate()
	require.NoError(t, err)

	assert.Equal(t, "AL092024", obs.StormID)
	assert.Equal(t, "MILTON", obs.StormName)
	assert.Equal(t, 12, obs.AdvisoryNumber)
	assert.Equal(t, time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC), obs.Timestamp)
	assert.InDelta(t, 100, obs.IntensityKt, 1e-9)
	require.NotNil(t, obs.PressureMb)
	assert.InDelta(t, 955, *obs.PressureMb, 1e-9)
	require.NotNil(t, obs.ForecastKt)
	assert.InDelta(t, 120, *obs.ForecastKt, 1e-9)

	require.True(t, obs.Env.HasData())
	assert.InDelta(t, 29.5, obs.Env.SSTCelsius, 1e-9)
	assert.Equal(t, "SHIPS", obs.Env.Source)
}

func TestRawAdvisory_Validate_NormalizesToUTC(t *testing.T) {
	adv := validAdvisory()
	adv.AdvisoryTime = "2024-09-01T07:00:00-05:00"

	obs, err := adv.Validate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC), obs.Timestamp)
}

func TestRawAdvisory_Validate_OptionalFieldsAbsent(t *testing.T) {
	adv := validAdvisory()
	adv.Pressure = nil
	adv.ForecastIntensity = nil
	adv.Environment = nil

	obs, err := adv.Validate()
	require.NoError(t, err)
	assert.Nil(t, obs.PressureMb)
	assert.Nil(t, obs.ForecastKt)
	assert.False(t, obs.Env.HasData())
}

func TestRawAdvisory_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*domain.RawAdvisory)
	}{
		{"missing storm id", "id", func(a *domain.RawAdvisory) { a.StormID = "" }},
		{"missing advisory time", "advisoryTime", func(a *domain.RawAdvisory) { a.AdvisoryTime = "" }},
		{"malformed advisory time", "advisoryTime", func(a *domain.RawAdvisory) { a.AdvisoryTime = "yesterday" }},
		{"missing intensity", "intensity", func(a *domain.RawAdvisory) { a.Intensity = nil }},
		{"negative intensity", "intensity", func(a *domain.RawAdvisory) { a.Intensity = ptr(-10) }},
		{"impossible intensity", "intensity", func(a *domain.RawAdvisory) { a.Intensity = ptr(250) }},
		{"pressure below record", "pressure", func(a *domain.RawAdvisory) { a.Pressure = ptr(800) }},
		{"pressure above record", "pressure", func(a *domain.RawAdvisory) { a.Pressure = ptr(1200) }},
		{"missing position", "position", func(a *domain.RawAdvisory) { a.Latitude = nil }},
		{"latitude out of range", "latitude", func(a *domain.RawAdvisory) { a.Latitude = ptr(95) }},
		{"longitude out of range", "longitude", func(a *domain.RawAdvisory) { a.Longitude = ptr(-200) }},
		{"incomplete environment block", "environment", func(a *domain.RawAdvisory) { a.Environment.SST = nil }},
		{"frozen sea", "environment.sst", func(a *domain.RawAdvisory) { a.Environment.SST = ptr(-10) }},
		{"impossible shear", "environment.windShear", func(a *domain.RawAdvisory) { a.Environment.WindShear = ptr(300) }},
		{"non-positive ceiling", "environment.potentialIntensity", func(a *domain.RawAdvisory) { a.Environment.PotentialIntensity = ptr(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := validAdvisory()
			tt.mutate(&adv)

			_, err := adv.Validate()
			require.Error(t, err)

			var de *domain.DataError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestRawAdvisory_Validate_UnsourcedEnvironment(t *testing.T) {
	adv := validAdvisory()
	adv.Environment.Source = ""

	obs, err := adv.Validate()
	require.NoError(t, err)
	assert.Equal(t, "unspecified", obs.Env.Source)
	assert.True(t, obs.Env.HasData())
}

func TestParseRawObservation(t *testing.T) {
	data, err := json.Marshal(validAdvisory())
	require.NoError(t, err)

	obs, err := domain.ParseRawObservation(domain.RawEvent{
		Key:   []byte("AL092024"),
		Value: data,
	})
	require.NoError(t, err)
	assert.Equal(t, "AL092024", obs.StormID)
}

func TestParseRawObservation_MalformedJSON(t *testing.T) {
	_, err := domain.ParseRawObservation(domain.RawEvent{
		Key:   []byte("AL092024"),
		Value: []byte("not json"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsDataError(err))
}

func TestObservation_WithEnvironmentDoesNotMutate(t *testing.T) {
	obs, err := validAdvisory().Validate()
	require.NoError(t, err)
	obs.Env = domain.EnvironmentSample{}

	sample := domain.EnvironmentSample{
		SSTCelsius: 28, WindShearKt: 12, PotentialIntensityKt: 130, Source: "climatology",
	}
	filled := obs.WithEnvironment(sample)

	assert.False(t, obs.Env.HasData())
	assert.True(t, filled.Env.HasData())
	assert.Equal(t, sample, filled.Env)
}
