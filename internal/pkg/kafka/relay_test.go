package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"Huddle/internal/pkg/realtime"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
	fail   int
}

func (f *fakePublisher) Publish(_ context.Context, ev realtime.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return errors.New("redis down")
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeSession struct {
	marked    []*sarama.ConsumerMessage
	committed int
}

func (f *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	f.marked = append(f.marked, msg)
}

func (f *fakeSession) Commit() { f.committed++ }

func kmsg(offset int64, value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "huddle.messages", Offset: offset, Value: []byte(value)}
}

func TestToChangeEvents(t *testing.T) {
	insert := &CanalMessage{Table: "messages", Type: INSERT, ES: 7, Data: []map[string]interface{}{{"id": "1"}, {"id": "2"}}}
	events, err := ToChangeEvents(insert)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, realtime.EventInsert, events[0].Type)
	assert.Equal(t, int64(7), events[1].CommitTS)
	assert.Nil(t, events[0].Old)

	del := &CanalMessage{Table: "messages", Type: DELETE, Data: []map[string]interface{}{{"id": "3"}}}
	events, err = ToChangeEvents(del)
	require.NoError(t, err)
	assert.Nil(t, events[0].New)
	assert.Equal(t, "3", events[0].Old["id"])

	upd := &CanalMessage{
		Table: "messages", Type: UPDATE,
		Data: []map[string]interface{}{{"id": "4", "body": "new", "type": "channel"}},
		Old:  []map[string]interface{}{{"body": "old"}},
	}
	events, err = ToChangeEvents(upd)
	require.NoError(t, err)
	assert.Equal(t, "new", events[0].New["body"])
	assert.Equal(t, "old", events[0].Old["body"])
	assert.Equal(t, "channel", events[0].Old["type"])

	_, err = ToChangeEvents(&CanalMessage{Table: "messages", Type: "ALTER", Data: []map[string]interface{}{{}}})
	assert.Error(t, err)

	ddl, err := ToChangeEvents(&CanalMessage{Table: "messages", IsDDL: true})
	assert.NoError(t, err)
	assert.Empty(t, ddl)
}

func TestRelayLogicPublishes(t *testing.T) {
	pub := &fakePublisher{}
	h := NewChangeRelayHandler(pub)

	err := h.logic(context.Background(), kmsg(1, `{"table":"reactions","type":"DELETE","data":[{"id":"8","message_id":"3"}]}`))
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "reactions", pub.events[0].Table)
	assert.Equal(t, realtime.EventDelete, pub.events[0].Type)
}

func TestRelayLogicPermanentErrors(t *testing.T) {
	h := NewChangeRelayHandler(&fakePublisher{})

	err := h.logic(context.Background(), kmsg(1, `not json`))
	assert.True(t, IsPermanent(err))

	err = h.logic(context.Background(), kmsg(2, `{"table":"profiles","type":"INSERT","data":[{"id":"1"}]}`))
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, errTableNotMatch)

	err = h.logic(context.Background(), kmsg(3, `{"table":"messages","type":"INSERT","data":[]}`))
	assert.True(t, IsPermanent(err))
}

func TestProcessBatchRetriesAndCommits(t *testing.T) {
	pub := &fakePublisher{fail: 1}
	h := NewChangeRelayHandler(pub)
	sess := &fakeSession{}

	batch := []*sarama.ConsumerMessage{
		kmsg(10, `{"table":"messages","type":"INSERT","data":[{"id":"1"}]}`),
		kmsg(11, `garbage`),
		kmsg(12, `{"table":"messages","type":"INSERT","data":[{"id":"2"}]}`),
	}
	processBatch(context.Background(), sess, batch, h.logic)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "1", pub.events[0].New["id"])
	assert.Equal(t, "2", pub.events[1].New["id"])
	require.Len(t, sess.marked, 1)
	assert.Equal(t, int64(12), sess.marked[0].Offset)
	assert.Equal(t, 1, sess.committed)
}

func TestProcessBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sess := &fakeSession{}

	processBatch(ctx, sess, []*sarama.ConsumerMessage{kmsg(1, `x`)}, func(context.Context, *sarama.ConsumerMessage) error {
		return errors.New("transient")
	})
	assert.Empty(t, sess.marked)
}
