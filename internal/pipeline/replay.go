package pipeline

import (
	"fmt"

	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
	"github.com/couchcryptid/cyclone-constraint-service/internal/timeline"
)

// Replay feeds an ordered list of observations for a single past storm
// through the same per-cycle engine used live, reconstructing its full
// constraint evolution. The result is deterministic: replaying the same list
// twice produces identical timelines.
//
// An estimator may be nil when every observation carries environmental data.
// The first invalid observation or out-of-order timestamp aborts the replay;
// a retrospective study with silently skipped cycles would be misleading.
func Replay(engine *constraint.Engine, estimator EnvironmentEstimator, observations []domain.StormObservation) (*timeline.Timeline, []CycleResult, error) {
	if len(observations) == 0 {
		return nil, nil, fmt.Errorf("replay: no observations")
	}

	stormID := observations[0].StormID
	tl := timeline.New(stormID)
	results := make([]CycleResult, 0, len(observations))

	for i, obs := range observations {
		if obs.StormID != stormID {
			return nil, nil, fmt.Errorf("replay: observation %d belongs to storm %q, want %q", i, obs.StormID, stormID)
		}

		if !obs.Env.HasData() {
			if estimator == nil {
				return nil, nil, domain.NewDataError(obs.StormID, obs.Timestamp,
					"environment", "missing and no fallback estimator configured")
			}
			obs = obs.WithEnvironment(estimator.Estimate(obs.Latitude, obs.Longitude, obs.Timestamp))
		}

		prev := tl.Latest()
		snap, err := engine.Step(obs, prev)
		if err != nil {
			return nil, nil, fmt.Errorf("replay: observation %d: %w", i, err)
		}
		if err := tl.Append(snap); err != nil {
			return nil, nil, fmt.Errorf("replay: observation %d: %w", i, err)
		}

		results = append(results, CycleResult{
			Snapshot: snap,
			Insight:  constraint.GenerateInsight(snap, prev, forecastSummary(obs)),
		})
	}

	return tl, results, nil
}
