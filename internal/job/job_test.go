package job

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/msgstore"
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/service"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSync struct {
	reloads atomic.Int32
	err     error
}

func (c *countingSync) ViewerID() uint64        { return 0 }
func (c *countingSync) Store() *msgstore.Store { return msgstore.New() }
func (c *countingSync) Watch(context.Context, string, model.ConversationKey) error {
	return nil
}
func (c *countingSync) Unwatch(string)                                        {}
func (c *countingSync) State(model.ConversationKey) service.SubscriptionState { return service.StateIdle }
func (c *countingSync) ApplyLocal(model.ConversationKey, *dto.DisplayMessage) bool {
	return false
}
func (c *countingSync) Reload(context.Context, model.ConversationKey) error { return nil }
func (c *countingSync) ReloadAll(context.Context) error {
	c.reloads.Add(1)
	return c.err
}
func (c *countingSync) Reset() {}
func (c *countingSync) Stop()  {}

type stubSession struct {
	id   string
	sync *countingSync
}

func (s *stubSession) ID() string                { return s.id }
func (s *stubSession) UserID() uint64            { return 1 }
func (s *stubSession) Sync() service.SyncService { return s.sync }
func (s *stubSession) Close()                    {}

func TestReconcileJobReloadsEverySession(t *testing.T) {
	reg := service.NewSessionRegistry()
	a := &countingSync{}
	b := &countingSync{err: errors.New("db down")}
	reg.Register(&stubSession{id: "a", sync: a})
	reg.Register(&stubSession{id: "b", sync: b})

	NewReconcileJob(reg).Run()

	assert.Equal(t, int32(1), a.reloads.Load())
	assert.Equal(t, int32(1), b.reloads.Load())
}

func TestReconcileJobNoSessions(t *testing.T) {
	assert.NotPanics(t, NewReconcileJob(service.NewSessionRegistry()).Run)
}

func TestLimiterSweepJob(t *testing.T) {
	pool := ratelimit.NewPool(1, 1, time.Nanosecond)
	pool.Get("u:1")
	time.Sleep(time.Millisecond)

	NewLimiterSweepJob(pool).Run()
	assert.Equal(t, 0, pool.Len())
}
