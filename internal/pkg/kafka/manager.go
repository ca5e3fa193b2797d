package kafka

import (
	"Huddle/internal/api/config"
	"Huddle/internal/pkg/realtime"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	relayConsumer sarama.ConsumerGroup
	relayHandler  sarama.ConsumerGroupHandler
	relayTopics   []string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, publisher realtime.Publisher) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	relayConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaRelay.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		relayConsumer: relayConsumer,
		relayHandler:  NewChangeRelayHandler(publisher),
		relayTopics:   cfg.KafkaRelay.Topics,
	}, nil
}

// Start 阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.relayConsumer.Errors() {
			log.Error("Error from relay consumer group", "err", err)
		}
	}()

	go func() {
		log.Info("Change relay consumer started", "topics", m.relayTopics)
		for {
			if err := m.relayConsumer.Consume(ctx, m.relayTopics, m.relayHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.relayConsumer.Close(); err != nil {
		log.Error("Failed to close relay consumer", "err", err)
	}

	return nil
}
