// Package msgstore 按会话上下文缓存展示消息
package msgstore

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/projector"
	"sort"
	"sync"
)

// Store 每个会话一个实例，所有读写都经过拷贝，外部无法直接修改内部切片
// 每个上下文的列表始终按 (created_at, id) 升序且 id 唯一
type Store struct {
	mu       sync.RWMutex
	contexts map[model.ConversationKey][]*dto.DisplayMessage
}

func New() *Store {
	return &Store{contexts: make(map[model.ConversationKey][]*dto.DisplayMessage)}
}

// SetMessages 整体替换，重复 id 以后出现的为准
func (s *Store) SetMessages(key model.ConversationKey, messages []*dto.DisplayMessage) {
	byID := make(map[uint64]int, len(messages))
	list := make([]*dto.DisplayMessage, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		if i, ok := byID[m.ID]; ok {
			list[i] = m.Clone()
			continue
		}
		byID[m.ID] = len(list)
		list = append(list, m.Clone())
	}
	projector.SortMessages(list)

	s.mu.Lock()
	s.contexts[key] = list
	s.mu.Unlock()
}

// AddMessage 插入或按合并规则覆盖，返回状态是否变化
func (s *Store) AddMessage(key model.ConversationKey, message *dto.DisplayMessage) bool {
	if message == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.contexts[key]
	i := indexOf(list, message.ID)
	if i < 0 {
		s.contexts[key] = insertSorted(list, message.Clone())
		return true
	}

	old := list[i]
	merged := Merge(old, message)
	if Equal(old, merged) {
		return false
	}
	// created_at 可能变化，重新定位
	list = append(list[:i:i], list[i+1:]...)
	s.contexts[key] = insertSorted(list, merged)
	return true
}

// UpdateReactions 只替换 reactions，id 不存在时不做任何事
func (s *Store) UpdateReactions(key model.ConversationKey, messageID uint64, reactions []dto.AggregatedReaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.contexts[key]
	i := indexOf(list, messageID)
	if i < 0 {
		return false
	}
	if reactions == nil {
		reactions = []dto.AggregatedReaction{}
	}
	if reactionsEqual(list[i].Reactions, reactions) {
		return false
	}
	updated := list[i].Clone()
	updated.Reactions = append([]dto.AggregatedReaction{}, reactions...)
	next := append([]*dto.DisplayMessage(nil), list...)
	next[i] = updated
	s.contexts[key] = next
	return true
}

// DeleteMessage id 不存在时不做任何事
func (s *Store) DeleteMessage(key model.ConversationKey, messageID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.contexts[key]
	i := indexOf(list, messageID)
	if i < 0 {
		return false
	}
	next := make([]*dto.DisplayMessage, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	s.contexts[key] = next
	return true
}

// ReplaceThread 替换父消息的子话题，父消息不存在或子话题未加载时不做任何事
func (s *Store) ReplaceThread(key model.ConversationKey, parentID uint64, replies []*dto.DisplayMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.contexts[key]
	i := indexOf(list, parentID)
	if i < 0 || !list[i].ThreadLoaded() {
		return false
	}
	thread := make([]*dto.DisplayMessage, 0, len(replies))
	for _, r := range replies {
		if r != nil {
			thread = append(thread, r.Clone())
		}
	}
	projector.SortMessages(thread)
	updated := list[i].Clone()
	updated.AttachThread(thread)
	if Equal(list[i], updated) {
		return false
	}
	next := append([]*dto.DisplayMessage(nil), list...)
	next[i] = updated
	s.contexts[key] = next
	return true
}

// RemoveReply 从已加载的子话题中移除回复，返回其父消息 id
func (s *Store) RemoveReply(key model.ConversationKey, replyID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.contexts[key]
	for i, m := range list {
		j := indexOf(m.Thread(), replyID)
		if j < 0 {
			continue
		}
		updated := m.Clone()
		thread := updated.Thread()
		rest := make([]*dto.DisplayMessage, 0, len(thread)-1)
		rest = append(rest, thread[:j]...)
		rest = append(rest, thread[j+1:]...)
		updated.AttachThread(rest)

		next := append([]*dto.DisplayMessage(nil), list...)
		next[i] = updated
		s.contexts[key] = next
		return m.ID, true
	}
	return 0, false
}

// Reset 清空所有上下文
func (s *Store) Reset() {
	s.mu.Lock()
	s.contexts = make(map[model.ConversationKey][]*dto.DisplayMessage)
	s.mu.Unlock()
}

// Evict 移除单个上下文
func (s *Store) Evict(key model.ConversationKey) {
	s.mu.Lock()
	delete(s.contexts, key)
	s.mu.Unlock()
}

// Messages 当前快照的副本，上下文不存在时返回空切片
func (s *Store) Messages(key model.ConversationKey) []*dto.DisplayMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.contexts[key]
	out := make([]*dto.DisplayMessage, len(list))
	for i, m := range list {
		out[i] = m.Clone()
	}
	return out
}

// Get 单条消息副本
func (s *Store) Get(key model.ConversationKey, messageID uint64) (*dto.DisplayMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.contexts[key]
	if i := indexOf(list, messageID); i >= 0 {
		return list[i].Clone(), true
	}
	return nil, false
}

func (s *Store) Has(key model.ConversationKey, messageID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.contexts[key], messageID) >= 0
}

// HasThread 父消息在 store 中且子话题已加载
func (s *Store) HasThread(key model.ConversationKey, parentID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.contexts[key]
	i := indexOf(list, parentID)
	return i >= 0 && list[i].ThreadLoaded()
}

// Contexts 已加载的上下文，顺序不固定
func (s *Store) Contexts() []model.ConversationKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]model.ConversationKey, 0, len(s.contexts))
	for k := range s.contexts {
		keys = append(keys, k)
	}
	return keys
}

func indexOf(list []*dto.DisplayMessage, id uint64) int {
	for i, m := range list {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// insertSorted 返回新切片，不修改传入的底层数组
func insertSorted(list []*dto.DisplayMessage, m *dto.DisplayMessage) []*dto.DisplayMessage {
	pos := sort.Search(len(list), func(i int) bool {
		return projector.Less(m, list[i])
	})
	next := make([]*dto.DisplayMessage, 0, len(list)+1)
	next = append(next, list[:pos]...)
	next = append(next, m)
	next = append(next, list[pos:]...)
	return next
}
