package model

import (
	"time"
)

// 消息类型，同时决定消息挂载到哪个引用字段
const (
	MessageTypeChannel = "channel"
	MessageTypeDirect  = "direct"
	MessageTypeThread  = "thread"
	MessageTypeBot     = "bot"
)

// Message 消息主表
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"`
	ChannelID  *uint64   `gorm:"index:idx_channel_created" json:"channelId"`  // type=channel
	ReceiverID *uint64   `gorm:"index:idx_receiver_created" json:"receiverId"` // type=direct/bot
	ParentID   *uint64   `gorm:"index:idx_parent_created" json:"parentId"`     // type=thread
	Body       *string   `gorm:"type:text" json:"body"`
	AuthorID   uint64    `gorm:"not null;index" json:"authorId"`
	CreatedAt  time.Time `gorm:"index:idx_channel_created;index:idx_receiver_created;index:idx_parent_created" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// 关联数据，未 Preload 时为 nil
	Author    *Profile       `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Files     []*MessageFile `gorm:"foreignKey:MessageID;references:ID" json:"files,omitempty"`
	Reactions []*Reaction    `gorm:"foreignKey:MessageID;references:ID" json:"reactions,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// CanHaveThread 是否允许挂载子话题
func (m *Message) CanHaveThread() bool {
	return IsParentEligible(m.Type)
}

// IsParentEligible 回复只能挂在频道消息、私信与机器人消息下
func IsParentEligible(msgType string) bool {
	switch msgType {
	case MessageTypeChannel, MessageTypeDirect, MessageTypeBot:
		return true
	default:
		return false
	}
}
