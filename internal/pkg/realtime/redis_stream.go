package realtime

import (
	"bytes"
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const DefaultChannelPrefix = "huddle:change:"

// RedisStream 每个进程一条 PSUBSCRIBE 连接，本地再按表分发给各会话订阅
type RedisStream struct {
	*hub
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStream(rdb redis.UniversalClient, prefix string, buffer int) *RedisStream {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisStream{hub: newHub(buffer), rdb: rdb, prefix: prefix}
}

// Channel 表对应的 Redis 频道
func (s *RedisStream) Channel(table string) string {
	return s.prefix + table
}

func (s *RedisStream) Subscribe(table string, filter Filter, handler Handler) (*Subscription, error) {
	return s.subscribe(table, filter, handler)
}

func (s *RedisStream) Unsubscribe(sub *Subscription) error {
	return s.unsubscribe(sub)
}

// Publish 变更序列化后发布到表频道
func (s *RedisStream) Publish(ctx context.Context, ev ChangeEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return s.rdb.Publish(ctx, s.Channel(ev.Table), payload).Err()
}

// Run 阻塞消费直到 ctx 结束，结束时关闭全部订阅
func (s *RedisStream) Run(ctx context.Context) error {
	pubsub := s.rdb.PSubscribe(ctx, s.prefix+"*")
	defer func() {
		_ = pubsub.Close()
		s.close()
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("psubscribe %s*: %w", s.prefix, err)
	}
	log.Info("change stream subscribed", "pattern", s.prefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return ErrStreamClosed
			}
			s.handleMessage(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (s *RedisStream) handleMessage(channel string, payload []byte) {
	ev, err := DecodeEvent(payload)
	if err != nil {
		log.Warn("drop undecodable change event", "channel", channel, "err", err)
		return
	}
	if ev.Table == "" {
		ev.Table = strings.TrimPrefix(channel, s.prefix)
	}
	if err = ev.Validate(); err != nil {
		log.Warn("drop malformed change event", "channel", channel, "err", err)
		return
	}
	s.dispatch(ev)
}

// Close 关闭全部订阅
func (s *RedisStream) Close() {
	s.close()
}

// DecodeEvent 数值保留为 json.Number，避免大 id 精度丢失
func DecodeEvent(payload []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %v", ErrEventMalformed, err)
	}
	return ev, nil
}
