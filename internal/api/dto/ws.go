package dto

import "github.com/goccy/go-json"

// 客户端 -> 服务端
const (
	FrameWatch   = "watch"
	FrameUnwatch = "unwatch"
	FrameSend    = "send"
	FrameReact   = "react"
	FramePing    = "ping"
)

// 服务端 -> 客户端
const (
	FrameSnapshot  = "snapshot"
	FrameUpsert    = "upsert"
	FrameDelete    = "delete"
	FrameReactions = "reactions"
	FrameState     = "state"
	FrameError     = "error"
	FramePong      = "pong"
	FrameAck       = "ack"
)

// InboundFrame 客户端帧，Data 按 Type 二次解码
type InboundFrame struct {
	Type  string          `json:"type"`
	ReqID string          `json:"req_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type WatchFrame struct {
	View    string `json:"view" validate:"required,max=32"`
	Context string `json:"context" validate:"required"`
}

type UnwatchFrame struct {
	View string `json:"view" validate:"required,max=32"`
}

type ReactFrame struct {
	MessageID uint64 `json:"message_id" validate:"required"`
	Emoji     string `json:"emoji" validate:"required,max=64"`
}

// OutboundFrame 服务端帧
type OutboundFrame struct {
	Type    string `json:"type"`
	ReqID   string `json:"req_id,omitempty"`
	Context string `json:"context,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type SnapshotData struct {
	Messages []*DisplayMessage `json:"messages"`
}

type DeleteData struct {
	MessageID uint64 `json:"message_id"`
}

type ReactionsData struct {
	MessageID uint64               `json:"message_id"`
	Reactions []AggregatedReaction `json:"reactions"`
}

type StateData struct {
	State string `json:"state"`
}

type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
