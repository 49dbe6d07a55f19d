//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-constraint-service/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-constraint-service/internal/config"
	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
	"github.com/couchcryptid/cyclone-constraint-service/internal/observability"
	"github.com/couchcryptid/cyclone-constraint-service/internal/pipeline"
	"github.com/couchcryptid/cyclone-constraint-service/internal/timeline"
)

const (
	testSourceTopic = "test-storm-advisories"
	testSinkTopic   = "test-constraint-snapshots"
)

// snapshotMessage holds a deserialized message read from the sink topic.
type snapshotMessage struct {
	Result  pipeline.CycleResult
	Key     string
	Headers map[string]string
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) snapshotMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result pipeline.CycleResult
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal sink message")

	return snapshotMessage{Result: result, Key: string(msg.Key), Headers: headers}
}

func ptrFloat(v float64) *float64 { return &v }

func makeAdvisoryPayload(t *testing.T, stormID, advisoryTime string, intensity float64, classification string) []byte {
	t.Helper()
	data, err := json.Marshal(domain.RawAdvisory{
		StormID:        stormID,
		StormName:      "INTTEST",
		AdvisoryTime:   advisoryTime,
		Classification: classification,
		Intensity:      &intensity,
		Latitude:       ptrFloat(18.0),
		Longitude:      ptrFloat(-60.0),
		Environment: &domain.RawEnvironment{
			SST:                ptrFloat(29.0),
			WindShear:          ptrFloat(10.0),
			PotentialIntensity: ptrFloat(150.0),
			Source:             "SHIPS",
		},
	})
	require.NoError(t, err)
	return data
}

// TestKafkaReaderWriter verifies the adapter layer round-trips an advisory
// message and a cycle result through real Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	payload := makeAdvisoryPayload(t, "AL092024", "2024-09-01T00:00:00Z", 45, "TS")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("AL092024"),
		Value: payload,
	}))

	// Extract via kafka.Reader. Retry because the consumer group may need
	// time to rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("AL092024"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	// Score the observation and publish via kafka.Writer.
	obs, err := domain.ParseRawObservation(raw)
	require.NoError(t, err)

	engine := constraint.NewEngine(constraint.DefaultCalibration())
	snap, err := engine.Step(obs, nil)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	result := pipeline.CycleResult{Snapshot: snap, Insight: constraint.GenerateInsight(snap, nil, "")}
	require.NoError(t, writer.PublishBatch(ctx, []pipeline.CycleResult{result}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	sm := readSnapshot(ctx, t, consumer)
	assert.Equal(t, "AL092024", sm.Key)
	assert.Equal(t, string(snap.Regime), sm.Headers["regime"])
	_, err = time.Parse(time.RFC3339, sm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "AL092024", sm.Result.Snapshot.StormID)
	assert.Nil(t, sm.Result.Snapshot.Gradient)
	assert.InDelta(t, snap.Admissibility, sm.Result.Snapshot.Admissibility, 1e-9)
}

// TestPipelineEndToEnd wires the full pipeline against real Kafka: a storm's
// advisory sequence (with a poison pill mixed in) flows from the source topic
// to ordered constraint snapshots on the sink topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	// Three advisory cycles with a poison pill between them.
	msgs := []kafkago.Message{
		{Key: []byte("AL092024"), Value: makeAdvisoryPayload(t, "AL092024", "2024-09-01T00:00:00Z", 35, "TD")},
		{Key: []byte("bad"), Value: []byte("not-json{{{")},
		{Key: []byte("AL092024"), Value: makeAdvisoryPayload(t, "AL092024", "2024-09-01T06:00:00Z", 45, "TS")},
		{Key: []byte("AL092024"), Value: makeAdvisoryPayload(t, "AL092024", "2024-09-01T12:00:00Z", 60, "TS")},
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	engine := constraint.NewEngine(constraint.DefaultCalibration())
	store := timeline.NewStore()
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, writer, nil, nil, engine, store, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]snapshotMessage, 0, 3)
	for len(received) < 3 {
		received = append(received, readSnapshot(ctx, t, consumer))
	}

	// Verify no fourth message arrives: the poison pill was skipped.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no extra message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)

	// Single-partition topic keyed by storm: snapshots arrive in timeline order.
	for i, sm := range received {
		assert.Equal(t, "AL092024", sm.Key)
		assert.NotEmpty(t, sm.Headers["regime"])
		if i == 0 {
			assert.Nil(t, sm.Result.Snapshot.Gradient, "first snapshot gradient must be undefined")
			assert.Contains(t, sm.Result.Insight, "insufficient history")
		} else {
			assert.NotNil(t, sm.Result.Snapshot.Gradient)
			assert.True(t, sm.Result.Snapshot.Timestamp.After(received[i-1].Result.Snapshot.Timestamp))
		}
	}

	// Intensifying in a steady favorable environment: headroom shrinks.
	first := received[0].Result.Snapshot
	last := received[2].Result.Snapshot
	assert.Less(t, last.Indicative, first.Indicative)
}
