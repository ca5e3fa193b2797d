package model

import "time"

// 在线状态
const (
	StatusOnline  = "ONLINE"
	StatusAway    = "AWAY"
	StatusOffline = "OFFLINE"
)

// Profile 用户资料，消息作者快照来源
type Profile struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);not null" json:"username"`
	AvatarURL *string   `gorm:"type:varchar(512)" json:"avatarUrl"`
	Status    string    `gorm:"type:varchar(16);not null;default:OFFLINE" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}
