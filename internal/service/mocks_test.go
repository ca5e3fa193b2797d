package service

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/util"
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) FetchMessageByID(ctx context.Context, id uint64) (*model.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*model.Message)
	return msg, args.Error(1)
}

func (m *MockMessageRepo) ListByContext(ctx context.Context, key model.ConversationKey, viewerID uint64, before *util.MessageCursor, limit int) ([]*model.Message, error) {
	args := m.Called(ctx, key, viewerID, before, limit)
	msgs, _ := args.Get(0).([]*model.Message)
	return msgs, args.Error(1)
}

func (m *MockMessageRepo) ListThreadReplies(ctx context.Context, parentIDs []uint64) ([]*model.Message, error) {
	args := m.Called(ctx, parentIDs)
	msgs, _ := args.Get(0).([]*model.Message)
	return msgs, args.Error(1)
}

func (m *MockMessageRepo) CreateMessage(ctx context.Context, msg *model.Message, files []*model.MessageFile) error {
	args := m.Called(ctx, msg, files)
	return args.Error(0)
}

func (m *MockMessageRepo) UpdateBody(ctx context.Context, id, authorID uint64, body string) (int64, error) {
	args := m.Called(ctx, id, authorID, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepo) DeleteMessage(ctx context.Context, id, authorID uint64) (int64, error) {
	args := m.Called(ctx, id, authorID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReactionRepo struct {
	mock.Mock
}

func (m *MockReactionRepo) FetchReactionsForMessage(ctx context.Context, messageID uint64) ([]*model.Reaction, error) {
	args := m.Called(ctx, messageID)
	rs, _ := args.Get(0).([]*model.Reaction)
	return rs, args.Error(1)
}

func (m *MockReactionRepo) ToggleReaction(ctx context.Context, messageID, userID uint64, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Bool(0), args.Error(1)
}

type MockChannelRepo struct {
	mock.Mock
}

func (m *MockChannelRepo) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]*model.Channel)
	return cs, args.Error(1)
}

func (m *MockChannelRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, signature string, ttl time.Duration) error {
	args := m.Called(ctx, signature, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, signature string) (bool, error) {
	args := m.Called(ctx, signature)
	return args.Bool(0), args.Error(1)
}

// recordingObserver 记录通知，供断言使用
type recordingObserver struct {
	mu        sync.Mutex
	snapshots map[model.ConversationKey]int
	upserts   []uint64
	deletes   []uint64
	reactions map[uint64][]dto.AggregatedReaction
	states    []SubscriptionState
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		snapshots: make(map[model.ConversationKey]int),
		reactions: make(map[uint64][]dto.AggregatedReaction),
	}
}

func (o *recordingObserver) OnSnapshot(key model.ConversationKey, _ []*dto.DisplayMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots[key]++
}

func (o *recordingObserver) OnUpsert(_ model.ConversationKey, message *dto.DisplayMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.upserts = append(o.upserts, message.ID)
}

func (o *recordingObserver) OnDelete(_ model.ConversationKey, messageID uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deletes = append(o.deletes, messageID)
}

func (o *recordingObserver) OnReactions(_ model.ConversationKey, messageID uint64, reactions []dto.AggregatedReaction) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reactions[messageID] = reactions
}

func (o *recordingObserver) OnState(_ model.ConversationKey, state SubscriptionState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
}

func (o *recordingObserver) upsertCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.upserts)
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func channelMessage(id, channelID, authorID uint64, body string, offset time.Duration) *model.Message {
	return &model.Message{
		ID:        id,
		Type:      model.MessageTypeChannel,
		ChannelID: util.Ptr(channelID),
		Body:      util.Ptr(body),
		AuthorID:  authorID,
		CreatedAt: baseTime.Add(offset),
		UpdatedAt: baseTime.Add(offset),
		Author:    &model.Profile{ID: authorID, Username: "user", Status: model.StatusOnline},
		Files:     []*model.MessageFile{},
		Reactions: []*model.Reaction{},
	}
}

func directMessage(id, authorID, receiverID uint64, body string, offset time.Duration) *model.Message {
	return &model.Message{
		ID:         id,
		Type:       model.MessageTypeDirect,
		ReceiverID: util.Ptr(receiverID),
		Body:       util.Ptr(body),
		AuthorID:   authorID,
		CreatedAt:  baseTime.Add(offset),
		UpdatedAt:  baseTime.Add(offset),
		Author:     &model.Profile{ID: authorID, Username: "user", Status: model.StatusOnline},
	}
}

func threadMessage(id, parentID, authorID uint64, body string, offset time.Duration) *model.Message {
	return &model.Message{
		ID:        id,
		Type:      model.MessageTypeThread,
		ParentID:  util.Ptr(parentID),
		Body:      util.Ptr(body),
		AuthorID:  authorID,
		CreatedAt: baseTime.Add(offset),
		UpdatedAt: baseTime.Add(offset),
		Author:    &model.Profile{ID: authorID, Username: "user", Status: model.StatusOnline},
	}
}

func (o *recordingObserver) stateLog() []SubscriptionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]SubscriptionState{}, o.states...)
}

func (o *recordingObserver) snapshotCount(key model.ConversationKey) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshots[key]
}
