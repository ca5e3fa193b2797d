package msgstore

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/pkg/util"
	"reflect"
)

// Merge 同 id 覆盖规则：
// 标量字段取新值；reactions、files、thread_messages 非空时才覆盖；
// author 只有新值为真实资料时才覆盖
func Merge(old, incoming *dto.DisplayMessage) *dto.DisplayMessage {
	merged := incoming.Clone()
	if old == nil {
		return merged
	}

	if len(incoming.Reactions) == 0 && old.Reactions != nil {
		merged.Reactions = append([]dto.AggregatedReaction{}, old.Reactions...)
	}
	if len(incoming.Files) == 0 && old.Files != nil {
		merged.Files = old.Clone().Files
	}
	if len(incoming.Thread()) == 0 && old.ThreadLoaded() {
		prev := old.Clone()
		merged.ThreadMessages = prev.ThreadMessages
		merged.ThreadCount = prev.ThreadCount
	}
	if !incoming.Author.Resolved() && old.Author != nil {
		merged.Author = old.Clone().Author
	}
	if merged.Reactions == nil {
		merged.Reactions = []dto.AggregatedReaction{}
	}
	if merged.Files == nil {
		merged.Files = []dto.FileDTO{}
	}
	return merged
}

// Equal 两条展示消息的可见内容是否一致
func Equal(a, b *dto.DisplayMessage) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Type != b.Type || a.Body != b.Body || a.AuthorID != b.AuthorID {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) || !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	if !util.EqualPtr(a.ChannelID, b.ChannelID) || !util.EqualPtr(a.ReceiverID, b.ReceiverID) || !util.EqualPtr(a.ParentID, b.ParentID) {
		return false
	}
	if !reflect.DeepEqual(a.Author, b.Author) || !filesEqual(a.Files, b.Files) || !reactionsEqual(a.Reactions, b.Reactions) {
		return false
	}
	if a.ThreadLoaded() != b.ThreadLoaded() || !util.EqualPtr(a.ThreadCount, b.ThreadCount) {
		return false
	}
	at, bt := a.Thread(), b.Thread()
	if len(at) != len(bt) {
		return false
	}
	for i := range at {
		if !Equal(at[i], bt[i]) {
			return false
		}
	}
	return true
}

func reactionsEqual(a, b []dto.AggregatedReaction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func filesEqual(a, b []dto.FileDTO) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].URL != b[i].URL || a[i].Type != b[i].Type || a[i].Name != b[i].Name ||
			!util.EqualPtr(a[i].ProcessingStatus, b[i].ProcessingStatus) {
			return false
		}
	}
	return true
}
