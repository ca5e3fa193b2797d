package kafka

import (
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
	maxRetry     = 5 * time.Second
)

var (
	errTableNotMatch = errors.New("table name not match")
	errEmptyData     = errors.New("data is empty")
)

// permanentError 重试也无法成功的消息，直接跳过
type permanentError struct {
	error
}

func (e permanentError) Unwrap() error { return e.error }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

// IsPermanent 是否为不可重试错误
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session.Context(), session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session.Context(), session, batch, logic)
				// 清空缓冲区 & 重置定时器
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session.Context(), session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// marker 位点标记与提交，便于测试
type marker interface {
	MarkMessage(msg *sarama.ConsumerMessage, metadata string)
	Commit()
}

// processBatch 按分区顺序逐条处理，失败指数退避重试，全部完成后提交最后一条的位点
func processBatch(ctx context.Context, session marker, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	for _, m := range messages {
		retryInterval := 100 * time.Millisecond
		for {
			err := logic(ctx, m)
			if err == nil {
				break
			}
			if IsPermanent(err) {
				log.Warn("skip unprocessable message", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
				break
			}

			log.Error("process message error", "topic", m.Topic, "offset", m.Offset, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryInterval):
			}

			retryInterval *= 2
			if retryInterval > maxRetry {
				retryInterval = maxRetry
			}
		}
	}

	if len(messages) > 0 {
		session.MarkMessage(messages[len(messages)-1], "")
		session.Commit()
	}
}

// ToCanalMessage 将kafka消息转换为canal消息结构体，tables 为空时不校验表名
func ToCanalMessage(msg *sarama.ConsumerMessage, tables ...string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, permanent(errors.Wrapf(err, "unmarshal canal message at offset %d", msg.Offset))
	}

	if len(tables) > 0 && !contains(tables, canalMsg.Table) {
		return nil, permanent(errors.Wrapf(errTableNotMatch, "table %q", canalMsg.Table))
	}

	if len(canalMsg.Data) == 0 && !canalMsg.IsDDL {
		return nil, permanent(errEmptyData)
	}

	return &canalMsg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
