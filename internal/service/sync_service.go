package service

import (
	"Huddle/internal/api/config"
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/consts"
	"Huddle/internal/pkg/metrics"
	"Huddle/internal/pkg/msgstore"
	"Huddle/internal/pkg/projector"
	"Huddle/internal/pkg/realtime"
	"Huddle/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"
)

// SubscriptionState 单个上下文订阅的状态
type SubscriptionState int

const (
	StateIdle SubscriptionState = iota
	StateSubscribing
	StateActive
)

func (s SubscriptionState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	default:
		return "idle"
	}
}

const defaultFetchTimeout = 3 * time.Second

// Observer 接收 store 变化，实现方不得回调 SyncService
type Observer interface {
	OnSnapshot(key model.ConversationKey, messages []*dto.DisplayMessage)
	OnUpsert(key model.ConversationKey, message *dto.DisplayMessage)
	OnDelete(key model.ConversationKey, messageID uint64)
	OnReactions(key model.ConversationKey, messageID uint64, reactions []dto.AggregatedReaction)
	OnState(key model.ConversationKey, state SubscriptionState)
}

// NopObserver 丢弃全部通知
type NopObserver struct{}

func (NopObserver) OnSnapshot(model.ConversationKey, []*dto.DisplayMessage) {}

func (NopObserver) OnUpsert(model.ConversationKey, *dto.DisplayMessage) {}

func (NopObserver) OnDelete(model.ConversationKey, uint64) {}

func (NopObserver) OnReactions(model.ConversationKey, uint64, []dto.AggregatedReaction) {}

func (NopObserver) OnState(model.ConversationKey, SubscriptionState) {}

// SyncService 单个会话的实时同步控制器
type SyncService interface {
	ViewerID() uint64
	Store() *msgstore.Store
	// Watch 把 view 指向 key，先释放旧 key 再订阅新 key
	Watch(ctx context.Context, view string, key model.ConversationKey) error
	Unwatch(view string)
	State(key model.ConversationKey) SubscriptionState
	// ApplyLocal 把本地已确认的写入并入 store，key 未激活时忽略
	ApplyLocal(key model.ConversationKey, message *dto.DisplayMessage) bool
	Reload(ctx context.Context, key model.ConversationKey) error
	ReloadAll(ctx context.Context) error
	// Reset 退订全部上下文并清空 store，之后仍可继续 Watch
	Reset()
	Stop()
}

// contextSub 一个上下文的订阅，被多个 view 引用计数
type contextSub struct {
	gen   uint64
	state SubscriptionState
	views map[string]struct{}
	subs  []*realtime.Subscription

	// loading 进行中的快照加载数，期间的变更记入 pending，快照落地后按到达顺序重放
	loading int
	loaded  bool
	pending []func(*contextSub)
	// reactionSeq 每条消息 reactions 的写入次数
	reactionSeq map[uint64]uint64
}

type released struct {
	key  model.ConversationKey
	subs []*realtime.Subscription
}

type syncServiceImpl struct {
	viewerID  uint64
	store     *msgstore.Store
	messages  repository.MessageRepo
	reactions repository.ReactionRepo
	stream    realtime.ChangeStream
	observer  Observer
	cfg       config.SyncConfig

	mu      sync.Mutex
	views   map[string]model.ConversationKey
	active  map[model.ConversationKey]*contextSub
	nextGen uint64
	stopped bool
}

func NewSyncService(viewerID uint64, store *msgstore.Store, messages repository.MessageRepo, reactions repository.ReactionRepo,
	stream realtime.ChangeStream, observer Observer, cfg config.SyncConfig) SyncService {
	if store == nil {
		store = msgstore.New()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if cfg.InitialLoadLimit <= 0 {
		cfg.InitialLoadLimit = consts.DefaultMessageLimit
	}
	return &syncServiceImpl{
		viewerID:  viewerID,
		store:     store,
		messages:  messages,
		reactions: reactions,
		stream:    stream,
		observer:  observer,
		cfg:       cfg,
		views:     make(map[string]model.ConversationKey),
		active:    make(map[model.ConversationKey]*contextSub),
	}
}

func (s *syncServiceImpl) ViewerID() uint64 {
	return s.viewerID
}

func (s *syncServiceImpl) Store() *msgstore.Store {
	return s.store
}

func (s *syncServiceImpl) Watch(ctx context.Context, view string, key model.ConversationKey) error {
	if key.IsZero() {
		return ErrInvalidContext
	}
	if key.RequiresViewer() && s.viewerID == 0 {
		return ErrLoginRequired
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if cur, ok := s.views[view]; ok && cur == key {
		s.mu.Unlock()
		return nil
	}
	old := s.releaseLocked(view)
	s.views[view] = key

	if entry, ok := s.active[key]; ok {
		entry.views[view] = struct{}{}
		state := entry.state
		s.mu.Unlock()
		s.finishRelease(old)
		if state == StateActive {
			s.observer.OnSnapshot(key, s.store.Messages(key))
		}
		return nil
	}

	s.nextGen++
	entry := &contextSub{
		gen:         s.nextGen,
		state:       StateSubscribing,
		views:       map[string]struct{}{view: {}},
		loading:     1,
		reactionSeq: make(map[uint64]uint64),
	}
	s.active[key] = entry
	s.mu.Unlock()

	s.finishRelease(old)
	s.observer.OnState(key, StateSubscribing)
	return s.setup(ctx, key, entry.gen)
}

func (s *syncServiceImpl) Unwatch(view string) {
	s.mu.Lock()
	old := s.releaseLocked(view)
	s.mu.Unlock()
	s.finishRelease(old)
}

func (s *syncServiceImpl) State(key model.ConversationKey) SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.active[key]; ok {
		return entry.state
	}
	return StateIdle
}

func (s *syncServiceImpl) ApplyLocal(key model.ConversationKey, message *dto.DisplayMessage) bool {
	if message == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active[key]
	if !ok || entry.state != StateActive || !dtoMatches(key, s.viewerID, message) {
		return false
	}
	if entry.loading > 0 {
		local := message.Clone()
		entry.pending = append(entry.pending, func(*contextSub) {
			s.upsertLocked(key, local)
		})
	}
	return s.upsertLocked(key, message)
}

func (s *syncServiceImpl) Reload(ctx context.Context, key model.ConversationKey) error {
	s.mu.Lock()
	entry, ok := s.active[key]
	if !ok || entry.state != StateActive {
		s.mu.Unlock()
		return nil
	}
	gen := entry.gen
	entry.loading++
	s.mu.Unlock()

	msgs, _, err := loadContext(ctx, s.messages, key, s.viewerID, nil, s.cfg.InitialLoadLimit)
	if err != nil {
		s.endLoad(key, gen)
		metrics.FetchFailures.WithLabelValues("reload").Inc()
		return fmt.Errorf("%w: reload %s: %w", ErrFetchFailed, key, err)
	}
	s.install(key, gen, msgs)
	return nil
}

func (s *syncServiceImpl) ReloadAll(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]model.ConversationKey, 0, len(s.active))
	for key, entry := range s.active {
		if entry.state == StateActive {
			keys = append(keys, key)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := s.Reload(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *syncServiceImpl) Reset() {
	s.teardown(false)
}

func (s *syncServiceImpl) Stop() {
	s.teardown(true)
}

func (s *syncServiceImpl) teardown(stop bool) {
	s.mu.Lock()
	if stop {
		s.stopped = true
	}
	all := make([]*released, 0, len(s.active))
	for key, entry := range s.active {
		all = append(all, &released{key: key, subs: entry.subs})
	}
	s.views = make(map[string]model.ConversationKey)
	s.active = make(map[model.ConversationKey]*contextSub)
	s.store.Reset()
	metrics.StoreMutations.WithLabelValues("reset", metrics.Changed(len(all) > 0)).Inc()
	s.mu.Unlock()

	for _, r := range all {
		s.finishRelease(r)
	}
}

// setup 先订阅再加载快照，订阅失败时仍保留快照但不进入 Active
func (s *syncServiceImpl) setup(ctx context.Context, key model.ConversationKey, gen uint64) error {
	subs, subErr := s.subscribe(key, gen)
	if subErr == nil && !s.attach(key, gen, subs) {
		s.unsubscribe(subs)
		return nil
	}

	msgs, _, err := loadContext(ctx, s.messages, key, s.viewerID, nil, s.cfg.InitialLoadLimit)
	if err != nil {
		return s.fail(ctx, key, gen, err)
	}
	if !s.install(key, gen, msgs) {
		return nil
	}
	if subErr != nil {
		return s.fail(ctx, key, gen, subErr)
	}

	s.mu.Lock()
	entry, ok := s.active[key]
	if !ok || entry.gen != gen {
		s.mu.Unlock()
		return nil
	}
	entry.state = StateActive
	s.observer.OnState(key, StateActive)
	s.mu.Unlock()

	log.DebugContext(ctx, "context subscribed", "context", key.String(), "gen", gen)
	return nil
}

// attach 记录订阅，gen 已过期时返回 false 由调用方退订
func (s *syncServiceImpl) attach(key model.ConversationKey, gen uint64, subs []*realtime.Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active[key]
	if !ok || entry.gen != gen {
		return false
	}
	entry.subs = subs
	return true
}

// install 落地快照并重放加载期间到达的变更
func (s *syncServiceImpl) install(key model.ConversationKey, gen uint64, msgs []*dto.DisplayMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active[key]
	if !ok || entry.gen != gen {
		metrics.ChangeEventsDropped.WithLabelValues("stale").Inc()
		return false
	}

	s.store.SetMessages(key, msgs)
	metrics.StoreMutations.WithLabelValues("set", metrics.Changed(true)).Inc()
	entry.loaded = true
	s.observer.OnSnapshot(key, s.store.Messages(key))

	for _, fn := range entry.pending {
		fn(entry)
	}
	s.finishLoadLocked(entry)
	return true
}

func (s *syncServiceImpl) endLoad(key model.ConversationKey, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.active[key]; ok && entry.gen == gen {
		s.finishLoadLocked(entry)
	}
}

func (s *syncServiceImpl) finishLoadLocked(entry *contextSub) {
	entry.loading--
	if entry.loading <= 0 {
		entry.loading = 0
		entry.pending = nil
	}
}

// fail 已加载的快照保留在 store 中，需重新 Watch 才会恢复实时更新
func (s *syncServiceImpl) fail(ctx context.Context, key model.ConversationKey, gen uint64, cause error) error {
	metrics.SubscriptionSetupFailures.Inc()
	log.ErrorContext(ctx, "context subscription setup failed", "context", key.String(), "err", cause)

	s.mu.Lock()
	entry, ok := s.active[key]
	current := ok && entry.gen == gen
	var subs []*realtime.Subscription
	if current {
		subs = entry.subs
		delete(s.active, key)
		for view := range entry.views {
			if s.views[view] == key {
				delete(s.views, view)
			}
		}
	}
	s.mu.Unlock()

	if current {
		s.unsubscribe(subs)
		s.observer.OnState(key, StateIdle)
	}
	return fmt.Errorf("%w: %s: %w", ErrSubscriptionSetupFailed, key, cause)
}

func (s *syncServiceImpl) subscribe(key model.ConversationKey, gen uint64) ([]*realtime.Subscription, error) {
	tables := []struct {
		table   string
		filter  realtime.Filter
		handler realtime.Handler
	}{
		{consts.TableMessages, s.messageFilter(key), s.onMessage(key, gen)},
		{consts.TableReactions, hasMessageID, s.onReaction(key, gen)},
		{consts.TableMessageFiles, hasMessageID, s.onFile(key, gen)},
	}

	subs := make([]*realtime.Subscription, 0, len(tables))
	for _, t := range tables {
		sub, err := s.stream.Subscribe(t.table, t.filter, t.handler)
		if err != nil {
			s.unsubscribe(subs)
			return nil, fmt.Errorf("subscribe %s: %w", t.table, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (s *syncServiceImpl) unsubscribe(subs []*realtime.Subscription) {
	for _, sub := range subs {
		if err := s.stream.Unsubscribe(sub); err != nil && !errors.Is(err, realtime.ErrStreamClosed) && !errors.Is(err, realtime.ErrUnknownSub) {
			log.Warn("unsubscribe failed", "table", sub.Table(), "subscription", sub.ID(), "err", err)
		}
	}
}

// releaseLocked 解除 view 引用，最后一个引用释放时移出 active 并返回待退订的订阅
func (s *syncServiceImpl) releaseLocked(view string) *released {
	key, ok := s.views[view]
	if !ok {
		return nil
	}
	delete(s.views, view)
	entry, ok := s.active[key]
	if !ok {
		return nil
	}
	delete(entry.views, view)
	if len(entry.views) > 0 {
		return nil
	}
	delete(s.active, key)
	s.store.Evict(key)
	return &released{key: key, subs: entry.subs}
}

func (s *syncServiceImpl) finishRelease(r *released) {
	if r == nil {
		return
	}
	s.unsubscribe(r.subs)
	s.observer.OnState(r.key, StateIdle)
}

// apply 仅当 gen 仍是该上下文的当前订阅时执行 fn
// 快照加载期间 fn 同时记入 pending，首次快照落地前只记录不执行
func (s *syncServiceImpl) apply(key model.ConversationKey, gen uint64, fn func(entry *contextSub)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active[key]
	if !ok || entry.gen != gen {
		metrics.ChangeEventsDropped.WithLabelValues("stale").Inc()
		return false
	}
	if entry.loading > 0 {
		entry.pending = append(entry.pending, fn)
	}
	if entry.loaded {
		fn(entry)
	}
	return true
}

// knownOrLoading 快照仍在加载时无法判断，一律视为已知
func (s *syncServiceImpl) knownOrLoading(key model.ConversationKey, gen uint64, known func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active[key]
	if !ok || entry.gen != gen {
		return false
	}
	return entry.loading > 0 || known()
}

func (s *syncServiceImpl) reactionMark(key model.ConversationKey, gen uint64, messageID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.active[key]; ok && entry.gen == gen {
		return entry.reactionSeq[messageID]
	}
	return 0
}

// upsertFetched 补全期间 reactions 已被更新时保留 store 中的 reactions
func (s *syncServiceImpl) upsertFetched(entry *contextSub, key model.ConversationKey, message *dto.DisplayMessage, mark uint64) {
	if entry.reactionSeq[message.ID] != mark && s.store.Has(key, message.ID) {
		message = message.Clone()
		message.Reactions = nil
	}
	s.upsertLocked(key, message)
}

func (s *syncServiceImpl) upsertLocked(key model.ConversationKey, message *dto.DisplayMessage) bool {
	changed := s.store.AddMessage(key, message)
	metrics.StoreMutations.WithLabelValues("add", metrics.Changed(changed)).Inc()
	if changed {
		s.notifyUpsertLocked(key, message.ID)
	}
	return changed
}

// messageFilter 完整行在投递前按上下文过滤，部分行与 DELETE 交由 handler 判断
// 非子话题上下文放行回复，用于刷新父消息的子话题
func (s *syncServiceImpl) messageFilter(key model.ConversationKey) realtime.Filter {
	return func(ev realtime.ChangeEvent) bool {
		if ev.Type == realtime.EventDelete || !ev.New.IsFullMessage() {
			return true
		}
		msg, err := ev.New.ToMessage()
		if err != nil {
			return true
		}
		return key.Matches(s.viewerID, msg) || isReplyOutside(key, msg)
	}
}

func isReplyOutside(key model.ConversationKey, m *model.Message) bool {
	return key.Kind != model.KindThread && m.Type == model.MessageTypeThread && m.ParentID != nil
}

func hasMessageID(ev realtime.ChangeEvent) bool {
	_, err := ev.Row().MessageIDOf()
	return err == nil
}

func (s *syncServiceImpl) onMessage(key model.ConversationKey, gen uint64) realtime.Handler {
	return func(ctx context.Context, ev realtime.ChangeEvent) {
		metrics.ChangeEvents.WithLabelValues(ev.Table, string(ev.Type)).Inc()

		if ev.Type == realtime.EventDelete {
			id, err := ev.Old.ID()
			if err != nil {
				metrics.ChangeEventsDropped.WithLabelValues("malformed").Inc()
				log.WarnContext(ctx, "delete event without id", "context", key.String())
				return
			}
			s.apply(key, gen, func(*contextSub) {
				changed := s.store.DeleteMessage(key, id)
				metrics.StoreMutations.WithLabelValues("delete", metrics.Changed(changed)).Inc()
				if changed {
					s.observer.OnDelete(key, id)
				}
				if parentID, ok := s.store.RemoveReply(key, id); ok {
					metrics.StoreMutations.WithLabelValues("thread", metrics.Changed(true)).Inc()
					s.notifyUpsertLocked(key, parentID)
				}
			})
			return
		}

		id, _ := ev.New.ID()
		mark := s.reactionMark(key, gen, id)
		msg, ok := s.resolve(ctx, key, gen, ev.New)
		if !ok {
			return
		}
		s.apply(key, gen, func(entry *contextSub) {
			s.upsertFetched(entry, key, msg, mark)
		})
	}
}

func (s *syncServiceImpl) onReaction(key model.ConversationKey, gen uint64) realtime.Handler {
	return func(ctx context.Context, ev realtime.ChangeEvent) {
		metrics.ChangeEvents.WithLabelValues(ev.Table, string(ev.Type)).Inc()

		messageID, err := ev.Row().MessageIDOf()
		if err != nil {
			metrics.ChangeEventsDropped.WithLabelValues("malformed").Inc()
			return
		}
		// 消息尚未进入 store，等待其自身事件或下次重载
		if !s.knownOrLoading(key, gen, func() bool { return s.store.Has(key, messageID) }) {
			metrics.ChangeEventsDropped.WithLabelValues("unknown_message").Inc()
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
		rows, err := s.reactions.FetchReactionsForMessage(fetchCtx, messageID)
		cancel()
		if err != nil {
			metrics.FetchFailures.WithLabelValues("reactions").Inc()
			log.WarnContext(ctx, "fetch reactions failed, event dropped",
				"context", key.String(), "message_id", messageID, "err", err)
			return
		}
		aggregated := projector.AggregateReactions(projector.ReactionRows(rows), s.viewerID)

		s.apply(key, gen, func(entry *contextSub) {
			entry.reactionSeq[messageID]++
			changed := s.store.UpdateReactions(key, messageID, aggregated)
			metrics.StoreMutations.WithLabelValues("reactions", metrics.Changed(changed)).Inc()
			if changed {
				s.observer.OnReactions(key, messageID, aggregated)
			}
		})
	}
}

// onFile 附件变更视为所属消息的部分 UPDATE
func (s *syncServiceImpl) onFile(key model.ConversationKey, gen uint64) realtime.Handler {
	return func(ctx context.Context, ev realtime.ChangeEvent) {
		metrics.ChangeEvents.WithLabelValues(ev.Table, string(ev.Type)).Inc()

		messageID, err := ev.Row().MessageIDOf()
		if err != nil {
			metrics.ChangeEventsDropped.WithLabelValues("malformed").Inc()
			return
		}
		mark := s.reactionMark(key, gen, messageID)
		msg, ok := s.resolve(ctx, key, gen, realtime.Record{"id": messageID})
		if !ok {
			return
		}
		s.apply(key, gen, func(entry *contextSub) {
			s.upsertFetched(entry, key, msg, mark)
		})
	}
}

// resolve 部分行先按 id 补全，补全后再做上下文过滤与投影
func (s *syncServiceImpl) resolve(ctx context.Context, key model.ConversationKey, gen uint64, rec realtime.Record) (*dto.DisplayMessage, bool) {
	scalar, err := rec.ToMessage()
	if err != nil {
		metrics.ChangeEventsDropped.WithLabelValues("malformed").Inc()
		log.WarnContext(ctx, "malformed message event", "context", key.String(), "err", err)
		return nil, false
	}

	full := rec.IsFullMessage()
	if full && !key.Matches(s.viewerID, scalar) {
		s.dropOutOfScope(ctx, key, gen, scalar)
		return nil, false
	}

	row := projector.MessageRow{Message: *scalar}
	if !full || s.cfg.EnrichFullRows {
		fetched, err := s.fetch(ctx, scalar.ID)
		switch {
		case err == nil:
			row = projector.RowFromModel(fetched)
		case !full:
			metrics.FetchFailures.WithLabelValues("message").Inc()
			metrics.ChangeEventsDropped.WithLabelValues("fetch").Inc()
			log.WarnContext(ctx, "fetch message failed, event dropped",
				"context", key.String(), "message_id", scalar.ID, "err", err)
			return nil, false
		default:
			// 完整行补全失败时按默认值展示
			metrics.FetchFailures.WithLabelValues("message").Inc()
			log.WarnContext(ctx, "enrich message failed, projecting defaults",
				"context", key.String(), "message_id", scalar.ID, "err", err)
		}
		if !key.Matches(s.viewerID, &row.Message) {
			s.dropOutOfScope(ctx, key, gen, &row.Message)
			return nil, false
		}
	}

	msg, err := projector.ProjectMessage(row, s.viewerID)
	if err != nil {
		metrics.InvalidMessages.Inc()
		metrics.ChangeEventsDropped.WithLabelValues("invalid").Inc()
		log.WarnContext(ctx, "drop invalid message event", "context", key.String(), "message_id", scalar.ID, "err", err)
		return nil, false
	}
	return msg, true
}

// dropOutOfScope 不属于上下文的行丢弃，是本上下文父消息的回复时刷新其子话题
func (s *syncServiceImpl) dropOutOfScope(ctx context.Context, key model.ConversationKey, gen uint64, m *model.Message) {
	metrics.ChangeEventsDropped.WithLabelValues("scope").Inc()
	if !isReplyOutside(key, m) {
		return
	}
	parentID := *m.ParentID
	if s.knownOrLoading(key, gen, func() bool { return s.store.HasThread(key, parentID) }) {
		s.refreshThread(ctx, key, gen, parentID)
	}
}

// refreshThread 重新拉取父消息的全部回复并替换已加载的子话题
func (s *syncServiceImpl) refreshThread(ctx context.Context, key model.ConversationKey, gen uint64, parentID uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
	rows, err := s.messages.ListThreadReplies(fetchCtx, []uint64{parentID})
	cancel()
	if err != nil {
		metrics.FetchFailures.WithLabelValues("thread").Inc()
		log.WarnContext(ctx, "fetch thread replies failed, parent left as is",
			"context", key.String(), "parent_id", parentID, "err", err)
		return
	}
	replies := projector.GroupReplies(ctx, projector.RowsFromModels(rows), s.viewerID)[parentID]

	s.apply(key, gen, func(*contextSub) {
		changed := s.store.ReplaceThread(key, parentID, replies)
		metrics.StoreMutations.WithLabelValues("thread", metrics.Changed(changed)).Inc()
		if changed {
			s.notifyUpsertLocked(key, parentID)
		}
	})
}

func (s *syncServiceImpl) notifyUpsertLocked(key model.ConversationKey, id uint64) {
	if stored, ok := s.store.Get(key, id); ok {
		s.observer.OnUpsert(key, stored)
	}
}

func (s *syncServiceImpl) fetch(ctx context.Context, id uint64) (*model.Message, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
	defer cancel()
	msg, err := fetchMessage(fetchCtx, s.messages, id)
	if err != nil {
		return nil, fmt.Errorf("%w: message %d: %w", ErrFetchFailed, id, err)
	}
	return msg, nil
}

func (s *syncServiceImpl) fetchTimeout() time.Duration {
	if s.cfg.FetchTimeout <= 0 {
		return defaultFetchTimeout
	}
	return time.Duration(s.cfg.FetchTimeout) * time.Millisecond
}

func dtoMatches(key model.ConversationKey, viewerID uint64, m *dto.DisplayMessage) bool {
	return key.Matches(viewerID, &model.Message{
		ID:         m.ID,
		Type:       m.Type,
		ChannelID:  m.ChannelID,
		ReceiverID: m.ReceiverID,
		ParentID:   m.ParentID,
		AuthorID:   m.AuthorID,
	})
}
