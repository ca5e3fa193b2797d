package util

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// MessageCursor 按 (created_at, id) 向前翻页的位置
type MessageCursor struct {
	CreatedAt time.Time `json:"c"`
	ID        uint64    `json:"i"`
}

// EncodeCursor 编码为 URL 安全的 Base64 字符串
func EncodeCursor(c MessageCursor) string {
	if c.ID == 0 {
		return ""
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor 空串返回 nil
func DecodeCursor(cursor string) (*MessageCursor, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c MessageCursor
	if err = json.Unmarshal(b, &c); err != nil || c.ID == 0 {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}
