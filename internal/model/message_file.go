package model

import (
	"time"
)

// 附件类型
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
)

type MessageFile struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID        uint64    `gorm:"not null;index:idx_message_sort" json:"messageId"`
	URL              string    `gorm:"type:varchar(1024);not null" json:"url"`
	FileType         string    `gorm:"type:varchar(16);not null" json:"fileType"`
	Name             *string   `gorm:"type:varchar(255)" json:"name"`
	ProcessingStatus *string   `gorm:"type:varchar(32)" json:"processingStatus"` // 文档向量化等异步处理状态
	SortOrder        int8      `gorm:"not null;default:0;index:idx_message_sort" json:"sortOrder"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (MessageFile) TableName() string {
	return "message_files"
}
