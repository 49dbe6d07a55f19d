package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/cyclone-constraint-service/internal/config"
	"github.com/couchcryptid/cyclone-constraint-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces constraint snapshots to the sink topic.
// It implements pipeline.ResultPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
// Messages are keyed by storm identifier so one storm's snapshots land on
// one partition and downstream consumers see them in order.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes multiple cycle results to the sink
// topic in a single WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, results []pipeline.CycleResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CycleResult into a Kafka message.
func serializeToMessage(result pipeline.CycleResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize cycle result: %w", err)
	}
	snap := result.Snapshot
	return kafkago.Message{
		Key:   []byte(snap.StormID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "regime", Value: []byte(snap.Regime)},
			{Key: "processed_at", Value: []byte(snap.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
