package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quakewatch/internal/config"
	"github.com/couchcryptid/quakewatch/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes JMA earthquake bulletins to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a producer for KAFKA_SINK_TOPIC. Messages are hash-balanced
// on the event key, so every revision of one earthquake lands on the same
// partition in issue order.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the bulletins in one WriteMessages call. A bulletin that
// cannot be encoded is logged and left out; it does not hold back the rest.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.EarthquakeRecord) error {
	msgs := make([]kafkago.Message, 0, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			w.logger.Error("skipping unencodable bulletin", "revision", records[i].RevisionKey(), "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d bulletins to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("published bulletins", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes a bulletin as JSON keyed by its event. The
// revision header lets consumers drop bulletins they already hold.
func serializeToMessage(record domain.EarthquakeRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode bulletin %s: %w", record.RevisionKey(), err)
	}
	return kafkago.Message{
		Key:   []byte(record.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("jma")},
			{Key: "revision", Value: []byte(record.RevisionKey())},
			{Key: "fetched_at", Value: []byte(record.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
