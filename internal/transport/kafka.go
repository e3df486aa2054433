package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/defi-rpg/engine/internal/config"
)

// Kafka relays chat messages to a Kafka topic.
type Kafka struct {
	producer sarama.SyncProducer
	logger   *slog.Logger
}

// NewKafka creates a Kafka-backed transport.
func NewKafka(cfg *config.KafkaConfig, logger *slog.Logger) (*Kafka, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating chat producer: %w", err)
	}

	return &Kafka{producer: producer, logger: logger}, nil
}

// Send implements Transport.
func (k *Kafka) Send(ctx context.Context, topic, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.StringEncoder(content),
	})
	if err != nil {
		return fmt.Errorf("relaying message: %w", err)
	}
	return nil
}

// Close shuts down the underlying producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
