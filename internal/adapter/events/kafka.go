package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"coinledger/internal/domain/model"
)

// RateUpdated is the wire event emitted for every published rate.
type RateUpdated struct {
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	ObservedAt time.Time `json:"observed_at"`
}

// KafkaExporter forwards rate updates onto a Kafka topic so consumers
// outside this process share the broadcast feed.
type KafkaExporter struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaExporter(brokers []string, topic string, logger *slog.Logger) *KafkaExporter {
	return &KafkaExporter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

// Export publishes one rate update. Errors are logged, not propagated:
// a broker outage must not disturb the in-process fan-out.
func (e *KafkaExporter) Export(rate model.Rate) {
	event := RateUpdated{
		Price:      rate.Price,
		Currency:   rate.Currency,
		ObservedAt: rate.ObservedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("failed to marshal rate event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		e.logger.Error("failed to publish rate event", "error", err)
	}
}

func (e *KafkaExporter) Close() error {
	if err := e.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
