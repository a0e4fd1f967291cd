// Package kafka broadcasts emitted alerts to the push topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/config"
	"github.com/couchcryptid/flood-alert-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces alert messages to the broadcast topic.
// It implements pipeline.AlertPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured alert topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes a cycle's alerts in a single
// WriteMessages call, preserving the severity ordering.
func (w *Writer) PublishAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(alerts))
	for i := range alerts {
		msg, err := serializeToMessage(alerts[i])
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

// serializeToMessage marshals an alert into a Kafka message keyed by basin
// so a consumer partition sees each basin's alerts in order.
func serializeToMessage(alert domain.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.BasinID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "level", Value: []byte(alert.Level)},
			{Key: "emitted_at", Value: []byte(alert.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
