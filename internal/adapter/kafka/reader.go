package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/cyclone-constraint-service/internal/config"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes raw advisory messages from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader creates a Kafka consumer for the configured source topic.
// Offsets are committed explicitly through each RawEvent's Commit callback
// after the snapshot has been published, not on fetch.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaSourceTopic,
		GroupID:        cfg.KafkaGroupID,
		CommitInterval: 0, // synchronous commits
	})
	return &Reader{reader: r, logger: logger, flushInterval: cfg.BatchFlushInterval}
}

// ExtractBatch fetches up to batchSize messages. The first fetch blocks until
// a message arrives or the context is cancelled; once the batch has started,
// each further fetch is bounded by the flush interval so a partial batch is
// returned promptly rather than stalling the cycle during quiet periods.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	events := make([]domain.RawEvent, 0, batchSize)

	for len(events) < batchSize {
		fetchCtx := ctx
		var cancel context.CancelFunc
		if len(events) > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, r.flushInterval)
		}

		msg, err := r.reader.FetchMessage(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if len(events) > 0 && (errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil) {
				return events, nil
			}
			return nil, err
		}
		events = append(events, mapMessageToRawEvent(msg, func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		}))
	}

	return events, nil
}

func mapMessageToRawEvent(msg kafkago.Message, commit func(ctx context.Context) error) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit:    commit,
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
