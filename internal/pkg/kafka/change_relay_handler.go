package kafka

import (
	"Huddle/internal/pkg/consts"
	"Huddle/internal/pkg/metrics"
	"Huddle/internal/pkg/realtime"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// ChangeRelayHandler canal 行变更转为 ChangeEvent 发布到实时通道
type ChangeRelayHandler struct {
	publisher realtime.Publisher
	tables    []string
}

func NewChangeRelayHandler(publisher realtime.Publisher) *ChangeRelayHandler {
	return &ChangeRelayHandler{
		publisher: publisher,
		tables:    []string{consts.TableMessages, consts.TableReactions, consts.TableMessageFiles},
	}
}

func (s *ChangeRelayHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("change relay consumer setup")
	return nil
}

func (s *ChangeRelayHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("change relay consumer cleanup")
	return nil
}

func (s *ChangeRelayHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("change relay consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("change relay process batch error", "err", err)
		return err
	}
	return nil
}

func (s *ChangeRelayHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	// 1. 解析 Canal 消息
	canalMsg, err := ToCanalMessage(msg, s.tables...)
	if err != nil {
		metrics.RelayErrors.WithLabelValues("decode").Inc()
		return err
	}

	// 2. 拆分为单行事件
	events, err := ToChangeEvents(canalMsg)
	if err != nil {
		metrics.RelayErrors.WithLabelValues("convert").Inc()
		return permanent(err)
	}

	// 3. 逐行发布，发布失败整条消息重试，订阅端合并是幂等的
	for _, ev := range events {
		if err = s.publisher.Publish(ctx, ev); err != nil {
			metrics.RelayErrors.WithLabelValues("publish").Inc()
			return errors.Wrapf(err, "publish %s %s", ev.Table, ev.Type)
		}
		metrics.RelayPublished.WithLabelValues(ev.Table).Inc()
	}

	log.DebugContext(ctx, "change relayed", "table", canalMsg.Table, "type", canalMsg.Type, "rows", len(events))
	return nil
}
