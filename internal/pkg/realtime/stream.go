package realtime

import (
	"context"
)

// Filter 订阅端谓词，返回 false 的事件不投递
type Filter func(ev ChangeEvent) bool

// Handler 按订阅内顺序串行调用
type Handler func(ctx context.Context, ev ChangeEvent)

// ChangeStream 变更订阅
type ChangeStream interface {
	Subscribe(table string, filter Filter, handler Handler) (*Subscription, error)
	Unsubscribe(sub *Subscription) error
}

// Publisher 发布变更
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// AllRows 不过滤
func AllRows(ChangeEvent) bool { return true }
