package kafka

import (
	"Huddle/internal/api/config"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const defaultClientID = "huddle-change-relay"

// newSaramaConfig 统一初始化 sarama.Config，位点在事件发布成功后手动提交
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	consumer := kafkaCfg.Consumer
	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = initialOffset(consumer.InitialOffset)
	c.Consumer.Offsets.AutoCommit.Enable = false

	if consumer.SessionTimeout > 0 {
		c.Consumer.Group.Session.Timeout = time.Duration(consumer.SessionTimeout) * time.Second
	}
	if consumer.HeartbeatInterval > 0 {
		c.Consumer.Group.Heartbeat.Interval = time.Duration(consumer.HeartbeatInterval) * time.Second
	}
	if consumer.RebalanceTimeout > 0 {
		c.Consumer.Group.Rebalance.Timeout = time.Duration(consumer.RebalanceTimeout) * time.Second
	}
	// 同一分区固定由一个实例消费，保证单行变更有序
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}

	c.ClientID = consumer.ClientID
	if c.ClientID == "" {
		c.ClientID = defaultClientID
	}

	return c
}

func initialOffset(s string) int64 {
	if strings.EqualFold(s, "oldest") {
		return sarama.OffsetOldest
	}
	return sarama.OffsetNewest
}
