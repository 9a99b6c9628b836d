package ingest

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sheltr/route-engine/pkg/config"
)

// Fetcher is the slice of the Kafka consumer the updater needs. Satisfied by
// *kafkago.Reader; tests substitute an in-memory fake.
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewReader creates a Kafka consumer for the safety update topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *kafkago.Reader {
	logger.Info("connecting safety update consumer",
		"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
