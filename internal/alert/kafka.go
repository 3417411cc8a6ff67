package alert

import (
	"context"
	"fmt"

	"LagScalper/internal/domain/models"
	"LagScalper/pkg/kafka"
)

// KafkaConfig names the topic signal events are published to.
type KafkaConfig struct {
	Topic string
}

// Kafka publishes signal events to a topic for downstream consumers
// (backtest recorders, execution bots). Events are keyed by symbol so a
// symbol's signals stay ordered within a partition.
type Kafka struct {
	cfg      KafkaConfig
	producer *kafka.Producer
}

// NewKafka creates a new Kafka notifier.
func NewKafka(cfg KafkaConfig, producer *kafka.Producer) *Kafka {
	return &Kafka{cfg: cfg, producer: producer}
}

func (k *Kafka) Name() string { return "kafka" }

// Send publishes the event as JSON.
func (k *Kafka) Send(ctx context.Context, ev *models.SignalEvent) error {
	if err := k.producer.Publish(ctx, k.cfg.Topic, []byte(ev.Symbol), ev); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (k *Kafka) Close() error { return k.producer.Close() }
