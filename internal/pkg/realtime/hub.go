package realtime

import (
	"Huddle/internal/pkg/metrics"
	"context"
	log "log/slog"
	"sync"
	"sync/atomic"
)

const defaultBufferSize = 256

// Subscription 单个订阅，有独立的缓冲与投递协程
type Subscription struct {
	id      uint64
	table   string
	filter  Filter
	handler Handler
	events  chan ChangeEvent
	done    chan struct{}
	once    sync.Once
}

func (s *Subscription) Table() string { return s.table }

func (s *Subscription) ID() uint64 { return s.id }

// Done 退订后关闭
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) stop() bool {
	stopped := false
	s.once.Do(func() {
		close(s.done)
		stopped = true
	})
	return stopped
}

func (s *Subscription) run(ctx context.Context) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(ctx, ev)
		}
	}
}

// hub 本进程内的订阅表，RedisStream 与 LocalStream 共用
type hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription
	nextID atomic.Uint64
	buffer int
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

func newHub(buffer int) *hub {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &hub{
		subs:   make(map[string]map[uint64]*Subscription),
		buffer: buffer,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *hub) subscribe(table string, filter Filter, handler Handler) (*Subscription, error) {
	if filter == nil {
		filter = AllRows
	}
	sub := &Subscription{
		id:      h.nextID.Add(1),
		table:   table,
		filter:  filter,
		handler: handler,
		events:  make(chan ChangeEvent, h.buffer),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrStreamClosed
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*Subscription)
	}
	h.subs[table][sub.id] = sub
	h.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()
	go sub.run(h.ctx)
	return sub, nil
}

func (h *hub) unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrUnknownSub
	}
	h.mu.Lock()
	tableSubs := h.subs[sub.table]
	_, ok := tableSubs[sub.id]
	if ok {
		delete(tableSubs, sub.id)
		if len(tableSubs) == 0 {
			delete(h.subs, sub.table)
		}
	}
	h.mu.Unlock()

	if sub.stop() {
		metrics.ActiveSubscriptions.Dec()
	}
	if !ok {
		return ErrUnknownSub
	}
	return nil
}

// dispatch 投递给该表的全部订阅，缓冲满时丢弃并记录
func (h *hub) dispatch(ev ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[ev.Table] {
		if !sub.filter(ev) {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			metrics.ChangeEventsDropped.WithLabelValues("overflow").Inc()
			log.Warn("change event dropped, subscriber buffer full",
				"table", ev.Table, "type", ev.Type, "subscription", sub.id)
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}

func (h *hub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	all := h.subs
	h.subs = make(map[string]map[uint64]*Subscription)
	h.mu.Unlock()

	for _, m := range all {
		for _, sub := range m {
			if sub.stop() {
				metrics.ActiveSubscriptions.Dec()
			}
		}
	}
	h.cancel()
}

// LocalStream 进程内实现，Publish 直接分发
type LocalStream struct {
	*hub
}

func NewLocalStream(buffer int) *LocalStream {
	return &LocalStream{hub: newHub(buffer)}
}

func (s *LocalStream) Subscribe(table string, filter Filter, handler Handler) (*Subscription, error) {
	return s.subscribe(table, filter, handler)
}

func (s *LocalStream) Unsubscribe(sub *Subscription) error {
	return s.unsubscribe(sub)
}

func (s *LocalStream) Publish(_ context.Context, ev ChangeEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	s.dispatch(ev)
	return nil
}

// Count 当前订阅数
func (s *LocalStream) Count() int {
	return s.count()
}

func (s *LocalStream) Close() {
	s.close()
}
