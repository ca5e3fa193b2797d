package dto

import (
	"time"
)

// AuthorDTO 作者资料快照
type AuthorDTO struct {
	ID          uint64  `json:"id"`
	Username    string  `json:"username"`
	AvatarURL   *string `json:"avatar_url"`
	Status      string  `json:"status"`
	Placeholder bool    `json:"placeholder,omitempty"` // 资料缺失时的占位作者
}

// Resolved 是否为真实资料
func (a *AuthorDTO) Resolved() bool {
	return a != nil && !a.Placeholder
}

// FileDTO 附件
type FileDTO struct {
	URL              string  `json:"url"`
	Type             string  `json:"type"`
	Name             string  `json:"name"`
	ProcessingStatus *string `json:"processing_status,omitempty"`
}

// AggregatedReaction 按 emoji 汇总的表情回应
type AggregatedReaction struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	ReactedByMe bool   `json:"reacted_by_me"`
}

// DisplayMessage 展示用消息
// ThreadMessages 为 nil 表示未加载，指向空切片表示已加载且无回复
type DisplayMessage struct {
	ID         uint64    `json:"id"`
	Type       string    `json:"type"`
	ChannelID  *uint64   `json:"channel_id,omitempty"`
	ReceiverID *uint64   `json:"receiver_id,omitempty"`
	ParentID   *uint64   `json:"parent_id,omitempty"`
	Body       string    `json:"body"`
	AuthorID   uint64    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author         *AuthorDTO           `json:"author"`
	Files          []FileDTO            `json:"files"`
	Reactions      []AggregatedReaction `json:"reactions"`
	ThreadMessages *[]*DisplayMessage   `json:"thread_messages,omitempty"`
	ThreadCount    *int                 `json:"thread_count,omitempty"`
}

// AttachThread 挂载已排序的回复
func (m *DisplayMessage) AttachThread(replies []*DisplayMessage) {
	if replies == nil {
		replies = []*DisplayMessage{}
	}
	count := len(replies)
	m.ThreadMessages = &replies
	m.ThreadCount = &count
}

// ThreadLoaded 子话题是否已加载
func (m *DisplayMessage) ThreadLoaded() bool {
	return m.ThreadMessages != nil
}

// Thread 未加载时返回 nil
func (m *DisplayMessage) Thread() []*DisplayMessage {
	if m.ThreadMessages == nil {
		return nil
	}
	return *m.ThreadMessages
}

// Clone 深拷贝，调用方持有的副本不会影响原值
func (m *DisplayMessage) Clone() *DisplayMessage {
	if m == nil {
		return nil
	}
	c := *m
	c.ChannelID = clonePtr(m.ChannelID)
	c.ReceiverID = clonePtr(m.ReceiverID)
	c.ParentID = clonePtr(m.ParentID)
	if m.Author != nil {
		a := *m.Author
		a.AvatarURL = clonePtr(m.Author.AvatarURL)
		c.Author = &a
	}
	if m.Files != nil {
		c.Files = make([]FileDTO, len(m.Files))
		for i, f := range m.Files {
			f.ProcessingStatus = clonePtr(f.ProcessingStatus)
			c.Files[i] = f
		}
	}
	if m.Reactions != nil {
		c.Reactions = append([]AggregatedReaction{}, m.Reactions...)
	}
	if m.ThreadMessages != nil {
		replies := make([]*DisplayMessage, len(*m.ThreadMessages))
		for i, r := range *m.ThreadMessages {
			replies[i] = r.Clone()
		}
		c.ThreadMessages = &replies
	}
	c.ThreadCount = clonePtr(m.ThreadCount)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// MessagePage 历史消息分页
type MessagePage struct {
	Context    string            `json:"context"`
	Messages   []*DisplayMessage `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ChannelDTO 频道列表项
type ChannelDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
