// Package realtime 行变更事件的订阅与分发
package realtime

import (
	"Huddle/internal/model"
	"Huddle/internal/pkg/util"
	"errors"
	"fmt"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

var (
	ErrStreamClosed   = errors.New("change stream closed")
	ErrUnknownSub     = errors.New("unknown subscription")
	ErrMissingID      = errors.New("change row has no id")
	ErrEventMalformed = errors.New("malformed change event")
)

// Record 一行的列值，来源于 canal JSON，数值类型不固定
type Record map[string]any

// ChangeEvent 一行的变更，DELETE 只有 Old
type ChangeEvent struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	New      Record    `json:"new,omitempty"`
	Old      Record    `json:"old,omitempty"`
	CommitTS int64     `json:"commit_ts,omitempty"`
}

// Validate 检查表名、类型与载荷
func (e ChangeEvent) Validate() error {
	if e.Table == "" {
		return fmt.Errorf("%w: empty table", ErrEventMalformed)
	}
	switch e.Type {
	case EventInsert, EventUpdate:
		if len(e.New) == 0 {
			return fmt.Errorf("%w: %s without new row", ErrEventMalformed, e.Type)
		}
	case EventDelete:
		if len(e.Old) == 0 {
			return fmt.Errorf("%w: DELETE without old row", ErrEventMalformed)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrEventMalformed, e.Type)
	}
	return nil
}

// Row 当前行，DELETE 时取 Old
func (e ChangeEvent) Row() Record {
	if e.Type == EventDelete {
		return e.Old
	}
	return e.New
}

func (r Record) has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// Uint64 读取整数列
func (r Record) Uint64(col string) (uint64, bool) {
	if !r.has(col) {
		return 0, false
	}
	v, err := util.StrToUint64(r[col])
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r Record) optUint64(col string) *uint64 {
	if v, ok := r.Uint64(col); ok {
		return &v
	}
	return nil
}

// ID 主键
func (r Record) ID() (uint64, error) {
	id, ok := r.Uint64("id")
	if !ok || id == 0 {
		return 0, ErrMissingID
	}
	return id, nil
}

// IsFullMessage 是否包含投影所需的全部标量列
func (r Record) IsFullMessage() bool {
	return r.has("type") && r.has("created_at") && r.has("author_id")
}

// ToMessage 转为消息标量字段，无关联数据
func (r Record) ToMessage() (*model.Message, error) {
	id, err := r.ID()
	if err != nil {
		return nil, err
	}
	m := &model.Message{
		ID:         id,
		ChannelID:  r.optUint64("channel_id"),
		ReceiverID: r.optUint64("receiver_id"),
		ParentID:   r.optUint64("parent_id"),
	}
	if s, ok := util.StrToString(r["type"]); ok {
		m.Type = s
	}
	if s, ok := util.StrToString(r["body"]); ok {
		m.Body = &s
	}
	if v, ok := r.Uint64("author_id"); ok {
		m.AuthorID = v
	}
	if r.has("created_at") {
		if m.CreatedAt, err = util.StrToTime(r["created_at"]); err != nil {
			return nil, fmt.Errorf("%w: created_at: %v", ErrEventMalformed, err)
		}
	}
	if r.has("updated_at") {
		if t, err := util.StrToTime(r["updated_at"]); err == nil {
			m.UpdatedAt = t
		}
	}
	return m, nil
}

// MessageIDOf reactions / message_files 行指向的消息
func (r Record) MessageIDOf() (uint64, error) {
	id, ok := r.Uint64("message_id")
	if !ok || id == 0 {
		return 0, fmt.Errorf("%w: message_id", ErrMissingID)
	}
	return id, nil
}
