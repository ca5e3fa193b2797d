package msgstore

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/projector"
	"Huddle/internal/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	ch   = model.ChannelKey(1)
)

func msg(id uint64, offset time.Duration) *dto.DisplayMessage {
	return &dto.DisplayMessage{
		ID:        id,
		Type:      model.MessageTypeChannel,
		ChannelID: util.Ptr(uint64(1)),
		Body:      "m",
		AuthorID:  7,
		CreatedAt: base.Add(offset),
		Author:    &dto.AuthorDTO{ID: 7, Username: "ada", Status: model.StatusOnline},
		Files:     []dto.FileDTO{},
		Reactions: []dto.AggregatedReaction{},
	}
}

func ids(list []*dto.DisplayMessage) []uint64 {
	out := make([]uint64, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func assertSorted(t *testing.T, list []*dto.DisplayMessage) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		assert.False(t, projector.Less(list[i], list[i-1]), "out of order at %d", i)
	}
}

func TestSetMessagesSortsAndDedupes(t *testing.T) {
	s := New()
	s.SetMessages(ch, []*dto.DisplayMessage{msg(3, 2*time.Second), msg(1, 0), msg(2, 0), msg(3, 2*time.Second)})

	got := s.Messages(ch)
	assert.Equal(t, []uint64{1, 2, 3}, ids(got))
	assertSorted(t, got)
}

func TestAddMessageIdempotent(t *testing.T) {
	s := New()
	m := msg(5, 0)

	assert.True(t, s.AddMessage(ch, m))
	first := s.Messages(ch)
	assert.False(t, s.AddMessage(ch, m))
	assert.Equal(t, first, s.Messages(ch))
	assert.Len(t, s.Messages(ch), 1)
}

func TestAddMessageKeepsReactionsOnPartialPayload(t *testing.T) {
	s := New()
	m1 := msg(1, 0)
	m1.Reactions = []dto.AggregatedReaction{{Emoji: "👍", Count: 1}}
	s.AddMessage(ch, m1)

	m2 := msg(1, 0)
	m2.Body = "edited"
	m2.Reactions = []dto.AggregatedReaction{}
	m2.Author = projector.PlaceholderAuthor(7)
	assert.True(t, s.AddMessage(ch, m2))

	got, ok := s.Get(ch, 1)
	require.True(t, ok)
	assert.Equal(t, "edited", got.Body)
	assert.Equal(t, m1.Reactions, got.Reactions)
	assert.Equal(t, "ada", got.Author.Username)
}

func TestAddMessageOverwritesWithEnrichedPayload(t *testing.T) {
	s := New()
	s.AddMessage(ch, msg(1, 0))

	m2 := msg(1, 0)
	m2.Reactions = []dto.AggregatedReaction{{Emoji: "🎉", Count: 2, ReactedByMe: true}}
	m2.Files = []dto.FileDTO{{URL: "u", Type: model.FileTypeImage, Name: "u"}}
	m2.Author = &dto.AuthorDTO{ID: 7, Username: "ada", Status: model.StatusAway}
	assert.True(t, s.AddMessage(ch, m2))

	got, _ := s.Get(ch, 1)
	assert.Equal(t, m2.Reactions, got.Reactions)
	assert.Equal(t, m2.Files, got.Files)
	assert.Equal(t, model.StatusAway, got.Author.Status)
}

func TestAddMessageKeepsLoadedThread(t *testing.T) {
	s := New()
	parent := msg(1, 0)
	parent.AttachThread([]*dto.DisplayMessage{msg(2, time.Second)})
	s.AddMessage(ch, parent)

	s.AddMessage(ch, msg(1, 0))

	got, _ := s.Get(ch, 1)
	require.True(t, got.ThreadLoaded())
	assert.Equal(t, 1, *got.ThreadCount)

	// 已加载的空子话题与未加载保持区分
	empty := msg(3, 0)
	empty.AttachThread(nil)
	s.AddMessage(ch, empty)
	s.AddMessage(ch, msg(3, 0))
	got, _ = s.Get(ch, 3)
	assert.True(t, got.ThreadLoaded())
	assert.Empty(t, got.Thread())
}

func reply(id, parentID uint64, offset time.Duration) *dto.DisplayMessage {
	return &dto.DisplayMessage{ID: id, Type: model.MessageTypeThread, ParentID: util.Ptr(parentID), AuthorID: 7,
		CreatedAt: base.Add(offset), Files: []dto.FileDTO{}, Reactions: []dto.AggregatedReaction{}}
}

func TestReplaceThread(t *testing.T) {
	s := New()
	parent := msg(1, 0)
	parent.AttachThread([]*dto.DisplayMessage{reply(2, 1, time.Second)})
	s.AddMessage(ch, parent)
	s.AddMessage(ch, msg(5, time.Minute))

	assert.True(t, s.HasThread(ch, 1))
	assert.False(t, s.HasThread(ch, 5))

	assert.True(t, s.ReplaceThread(ch, 1, []*dto.DisplayMessage{reply(3, 1, 2*time.Second), reply(2, 1, time.Second)}))
	got, _ := s.Get(ch, 1)
	assert.Equal(t, 2, *got.ThreadCount)
	assert.Equal(t, []uint64{2, 3}, ids(got.Thread()))

	assert.False(t, s.ReplaceThread(ch, 1, []*dto.DisplayMessage{reply(2, 1, time.Second), reply(3, 1, 2*time.Second)}))
	// 未加载子话题的父消息保持未加载
	assert.False(t, s.ReplaceThread(ch, 5, []*dto.DisplayMessage{reply(6, 5, time.Second)}))
	assert.False(t, s.ReplaceThread(ch, 9, nil))
	got, _ = s.Get(ch, 5)
	assert.False(t, got.ThreadLoaded())

	// 清空回复后仍为已加载
	assert.True(t, s.ReplaceThread(ch, 1, nil))
	got, _ = s.Get(ch, 1)
	assert.True(t, got.ThreadLoaded())
	assert.Equal(t, 0, *got.ThreadCount)
}

func TestRemoveReply(t *testing.T) {
	s := New()
	parent := msg(1, 0)
	parent.AttachThread([]*dto.DisplayMessage{reply(2, 1, time.Second), reply(3, 1, 2*time.Second)})
	s.AddMessage(ch, parent)

	parentID, ok := s.RemoveReply(ch, 2)
	require.True(t, ok)
	assert.Equal(t, uint64(1), parentID)
	got, _ := s.Get(ch, 1)
	assert.Equal(t, 1, *got.ThreadCount)
	assert.Equal(t, []uint64{3}, ids(got.Thread()))

	_, ok = s.RemoveReply(ch, 2)
	assert.False(t, ok)
	_, ok = s.RemoveReply(ch, 1)
	assert.False(t, ok)
}

func TestAddMessageResortsOnTimestampChange(t *testing.T) {
	s := New()
	s.SetMessages(ch, []*dto.DisplayMessage{msg(1, 0), msg(2, time.Second)})
	s.AddMessage(ch, msg(1, 2*time.Second))
	assert.Equal(t, []uint64{2, 1}, ids(s.Messages(ch)))
}

func TestSortInvariantUnderRandomOps(t *testing.T) {
	s := New()
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		id := uint64(r.Intn(40) + 1)
		at := time.Duration(r.Intn(10)) * time.Second
		switch r.Intn(4) {
		case 0:
			s.SetMessages(ch, []*dto.DisplayMessage{msg(id, at), msg(id+1, at)})
		case 1:
			s.DeleteMessage(ch, id)
		default:
			s.AddMessage(ch, msg(id, at))
		}
		list := s.Messages(ch)
		assertSorted(t, list)
		seen := map[uint64]bool{}
		for _, m := range list {
			assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
			seen[m.ID] = true
		}
	}
}

func TestUpdateReactions(t *testing.T) {
	s := New()
	m := msg(1, 0)
	m.Reactions = projector.AggregateReactions([]projector.ReactionRow{{Emoji: "👍", UserID: 10}}, 10)
	s.AddMessage(ch, m)

	next := projector.AggregateReactions([]projector.ReactionRow{
		{Emoji: "👍", UserID: 10}, {Emoji: "👍", UserID: 11}, {Emoji: "🎉", UserID: 12},
	}, 10)
	assert.True(t, s.UpdateReactions(ch, 1, next))

	got, _ := s.Get(ch, 1)
	assert.Equal(t, []dto.AggregatedReaction{
		{Emoji: "👍", Count: 2, ReactedByMe: true},
		{Emoji: "🎉", Count: 1, ReactedByMe: false},
	}, got.Reactions)
	assert.Equal(t, "m", got.Body)

	assert.False(t, s.UpdateReactions(ch, 1, next))
	assert.False(t, s.UpdateReactions(ch, 404, next))
	assert.False(t, s.Has(ch, 404))
}

func TestDeleteMessageIdempotent(t *testing.T) {
	s := New()
	s.SetMessages(ch, []*dto.DisplayMessage{msg(1, 0), msg(2, time.Second)})

	assert.False(t, s.DeleteMessage(ch, 9))
	assert.True(t, s.DeleteMessage(ch, 1))
	once := s.Messages(ch)
	assert.False(t, s.DeleteMessage(ch, 1))
	assert.Equal(t, once, s.Messages(ch))
	assert.Equal(t, []uint64{2}, ids(once))
}

func TestThreadReplyDoesNotTouchParentContext(t *testing.T) {
	s := New()
	reply := &dto.DisplayMessage{ID: 11, Type: model.MessageTypeThread, ParentID: util.Ptr(uint64(10)), CreatedAt: base}
	s.AddMessage(model.ThreadKey(10), reply)

	assert.Empty(t, s.Messages(ch))
	assert.Len(t, s.Messages(model.ThreadKey(10)), 1)
}

func TestDuplicateInsertDelivery(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddMessage(ch, msg(5, 0))
		}()
	}
	wg.Wait()
	assert.Len(t, s.Messages(ch), 1)
}

func TestReadsAreCopies(t *testing.T) {
	s := New()
	s.AddMessage(ch, msg(1, 0))

	list := s.Messages(ch)
	list[0].Body = "mutated"
	list[0].Author.Username = "mallory"

	got, _ := s.Get(ch, 1)
	assert.Equal(t, "m", got.Body)
	assert.Equal(t, "ada", got.Author.Username)
}

func TestWritesAreCopies(t *testing.T) {
	s := New()
	m := msg(1, 0)
	s.AddMessage(ch, m)
	m.Body = "mutated"

	got, _ := s.Get(ch, 1)
	assert.Equal(t, "m", got.Body)
}

func TestResetAndEvict(t *testing.T) {
	s := New()
	dm := model.DMKey(3)
	s.AddMessage(ch, msg(1, 0))
	s.AddMessage(dm, msg(2, 0))
	assert.ElementsMatch(t, []model.ConversationKey{ch, dm}, s.Contexts())

	s.Evict(ch)
	assert.Equal(t, []model.ConversationKey{dm}, s.Contexts())

	s.Reset()
	assert.Empty(t, s.Contexts())
	assert.NotNil(t, s.Messages(dm))
	assert.Empty(t, s.Messages(dm))
}
