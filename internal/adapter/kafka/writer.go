package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-profile-service/internal/config"
	"github.com/couchcryptid/quake-profile-service/internal/domain"
)

// Writer publishes loaded event catalogs to a Kafka topic.
// It implements session.Publisher.
type Writer struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured catalog topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.CatalogTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, clock: clockwork.NewRealClock(), logger: logger}
}

// PublishCatalog serializes and publishes events in a single WriteMessages
// call. Messages are keyed by event ID so re-publishing the same date range
// lands on the same partitions.
func (w *Writer) PublishCatalog(ctx context.Context, events []domain.SeismicEvent) error {
	if len(events) == 0 {
		return nil
	}
	publishedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}
	w.logger.Debug("catalog published", "events", len(events), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SeismicEvent into a Kafka message.
func serializeToMessage(event domain.SeismicEvent, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize seismic event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_time", Value: []byte(event.Time.UTC().Format(time.RFC3339))},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
