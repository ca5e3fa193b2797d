package model

import (
	"time"
)

type Reaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"not null;uniqueIndex:idx_message_emoji_user" json:"messageId"`
	Emoji     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_message_emoji_user" json:"emoji"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_message_emoji_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Reaction) TableName() string {
	return "reactions"
}
