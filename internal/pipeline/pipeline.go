// Package pipeline orchestrates the per-cycle flow: raw advisory in, scores,
// smoothed scores, admissibility and gradient, regime, insight, snapshot
// appended to the storm's timeline and published out. Data flows one
// direction; a failed cycle for one storm is skipped and reported, never
// partially computed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
	"github.com/couchcryptid/cyclone-constraint-service/internal/observability"
	"github.com/couchcryptid/cyclone-constraint-service/internal/timeline"
)

// BatchExtractor reads up to batchSize raw advisory events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// ResultPublisher writes cycle results to the destination.
type ResultPublisher interface {
	PublishBatch(ctx context.Context, results []CycleResult) error
}

// SnapshotArchiver persists snapshots for retrospective case studies.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snap domain.ConstraintSnapshot) error
}

// EnvironmentEstimator supplies a fallback environmental sample for
// observations that arrive without one.
type EnvironmentEstimator interface {
	Estimate(lat, lon float64, at time.Time) domain.EnvironmentSample
}

// CycleResult pairs the snapshot produced for one cycle with its insight.
type CycleResult struct {
	Snapshot domain.ConstraintSnapshot `json:"snapshot"`
	Insight  string                    `json:"insight"`
}

// Pipeline runs the extract-score-publish loop. A single pipeline goroutine
// owns every timeline in the store, satisfying the one-writer-per-storm rule.
type Pipeline struct {
	extractor BatchExtractor
	publisher ResultPublisher
	archiver  SnapshotArchiver     // optional
	estimator EnvironmentEstimator // optional
	engine    *constraint.Engine
	store     *timeline.Store
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline. archiver and estimator may be nil to disable
// snapshot archiving and the climatology fallback respectively.
func New(e BatchExtractor, p ResultPublisher, archiver SnapshotArchiver, estimator EnvironmentEstimator,
	engine *constraint.Engine, store *timeline.Store,
	logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		publisher: p,
		archiver:  archiver,
		estimator: estimator,
		engine:    engine,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Store exposes the timeline store for rendering collaborators.
func (p *Pipeline) Store() *timeline.Store { return p.store }

// ActiveStormCount returns the number of storms with an active timeline,
// surfaced in the readiness endpoint.
func (p *Pipeline) ActiveStormCount() int { return p.store.ActiveCount() }

// CheckReadiness returns nil if the pipeline has processed at least one
// observation, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any observations yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-score-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.ObservationsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	published, ok := p.scoreAndPublish(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if published > 0 {
		p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	p.metrics.ActiveTimelines.Set(float64(p.store.ActiveCount()))
	return true
}

// scoreAndPublish runs the engine cycle for each observation in the batch,
// publishes the successes, archives them, and commits offsets. Returns the
// number of published results and false if the pipeline should stop.
func (p *Pipeline) scoreAndPublish(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	results := make([]CycleResult, 0, len(rawBatch))
	successfulRaws := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		result, err := p.processCycle(raw)
		if err != nil {
			p.recordCycleError(err, raw)
			p.commitOffset(ctx, raw)
			continue
		}
		results = append(results, result)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(results) == 0 {
		return 0, true
	}

	// The snapshots are already appended to their timelines, so the batch
	// must reach the sink: retry the same batch until it publishes or the
	// pipeline is told to stop. Offsets stay uncommitted throughout, so a
	// restart mid-retry redelivers the observations.
	for {
		err := p.publisher.PublishBatch(ctx, results)
		if err == nil {
			break
		}
		p.logger.Error("publish batch failed, retrying", "error", err, "batch_size", len(results))
		if !p.backoffOrStop(ctx, backoff, maxBackoff) {
			return 0, false
		}
	}

	p.metrics.SnapshotsProduced.Add(float64(len(results)))
	for _, r := range results {
		p.metrics.RegimeAssigned.WithLabelValues(string(r.Snapshot.Regime)).Inc()
		p.archiveSnapshot(ctx, r.Snapshot)
	}

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(results), true
}

// processCycle runs the full engine cycle for one raw advisory event:
// boundary validation, environment fallback, scoring, timeline append,
// archival check, insight generation.
func (p *Pipeline) processCycle(raw domain.RawEvent) (CycleResult, error) {
	obs, err := domain.ParseRawObservation(raw)
	if err != nil {
		return CycleResult{}, err
	}

	if !obs.Env.HasData() {
		if p.estimator == nil {
			return CycleResult{}, domain.NewDataError(obs.StormID, obs.Timestamp,
				"environment", "missing and no fallback estimator configured")
		}
		obs = obs.WithEnvironment(p.estimator.Estimate(obs.Latitude, obs.Longitude, obs.Timestamp))
		p.metrics.ClimoFallbacks.Inc()
	}

	tl := p.store.GetOrCreate(obs.StormID)
	prev := tl.Latest()

	snap, err := p.engine.Step(obs, prev)
	if err != nil {
		return CycleResult{}, err
	}
	if err := tl.Append(snap); err != nil {
		return CycleResult{}, err
	}

	// Archive the timeline once the storm leaves the tropical lifecycle; a
	// reused identifier then starts fresh, with fresh smoothing state.
	if constraint.IsTerminal(obs.Classification) {
		p.store.Archive(obs.StormID)
		p.logger.Info("storm timeline archived",
			"storm_id", obs.StormID, "classification", obs.Classification, "snapshots", tl.Len())
	}

	insight := constraint.GenerateInsight(snap, prev, forecastSummary(obs))
	return CycleResult{Snapshot: snap, Insight: insight}, nil
}

// recordCycleError logs and counts a skipped cycle by error class.
func (p *Pipeline) recordCycleError(err error, raw domain.RawEvent) {
	switch {
	case domain.IsSequenceError(err):
		p.metrics.SequenceErrors.Inc()
		p.logger.Warn("out-of-order observation, skipping cycle",
			"error", err, "topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	case domain.IsDataError(err):
		p.metrics.DataErrors.Inc()
		p.logger.Warn("invalid observation, skipping cycle",
			"error", err, "topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	default:
		p.metrics.DataErrors.Inc()
		p.logger.Warn("cycle failed, skipping observation",
			"error", err, "topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func (p *Pipeline) archiveSnapshot(ctx context.Context, snap domain.ConstraintSnapshot) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.ArchiveSnapshot(ctx, snap); err != nil {
		p.logger.Warn("snapshot archive failed",
			"error", err, "storm_id", snap.StormID, "timestamp", snap.Timestamp)
	}
}

// forecastSummary renders the official forecast context handed to the
// insight generator. Empty when the advisory carries no forecast point.
func forecastSummary(obs domain.StormObservation) string {
	if obs.ForecastKt == nil {
		return ""
	}
	change := *obs.ForecastKt - obs.IntensityKt
	return fmt.Sprintf("%.0f kt forecast at +24h (%+.0f kt change)", *obs.ForecastKt, change)
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
