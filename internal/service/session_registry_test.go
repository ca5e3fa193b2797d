package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/msgstore"

	"github.com/stretchr/testify/assert"
)

type fakeSync struct {
	SyncService
	resets    atomic.Int32
	reloads   atomic.Int32
	reloadErr error
}

func (f *fakeSync) Reset() { f.resets.Add(1) }

func (f *fakeSync) ReloadAll(context.Context) error {
	f.reloads.Add(1)
	return f.reloadErr
}

func (f *fakeSync) Store() *msgstore.Store { return nil }

func (f *fakeSync) ApplyLocal(model.ConversationKey, *dto.DisplayMessage) bool { return false }

type fakeSession struct {
	id     string
	userID uint64
	sync   *fakeSync
	closed atomic.Bool
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) UserID() uint64 { return s.userID }

func (s *fakeSession) Sync() SyncService { return s.sync }

func (s *fakeSession) Close() { s.closed.Store(true) }

func newFakeSession(id string, userID uint64) *fakeSession {
	return &fakeSession{id: id, userID: userID, sync: &fakeSync{}}
}

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewSessionRegistry()
	a := newFakeSession("a", 1)
	r.Register(a)
	r.Register(a)
	r.Register(newFakeSession("b", 2))
	assert.Equal(t, 2, r.Count())

	r.Unregister("a")
	r.Unregister("a")
	assert.Equal(t, 1, r.Count())
}

func TestRegistryResetUser(t *testing.T) {
	r := NewSessionRegistry()
	a1, a2, b := newFakeSession("a1", 1), newFakeSession("a2", 1), newFakeSession("b", 2)
	r.Register(a1)
	r.Register(a2)
	r.Register(b)

	assert.Equal(t, 2, r.ResetUser(1))
	assert.True(t, a1.closed.Load())
	assert.True(t, a2.closed.Load())
	assert.EqualValues(t, 1, a1.sync.resets.Load())
	assert.False(t, b.closed.Load())
	assert.Equal(t, 0, r.ResetUser(0))
}

func TestRegistryReloadAll(t *testing.T) {
	r := NewSessionRegistry()
	ok, bad := newFakeSession("ok", 1), newFakeSession("bad", 2)
	bad.sync.reloadErr = errors.New("db down")
	r.Register(ok)
	r.Register(bad)

	err := r.ReloadAll(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.EqualValues(t, 1, ok.sync.reloads.Load())
	assert.EqualValues(t, 1, bad.sync.reloads.Load())
}
