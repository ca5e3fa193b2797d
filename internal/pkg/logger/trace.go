package logger

import (
	"context"
	log "log/slog"
)

type ctxKey string

const (
	// TraceIDKey gin.Context 中的 Key，同时用作日志字段名
	TraceIDKey   = "trace_id"
	SessionIDKey = "session_id"
)

const (
	traceCtxKey   ctxKey = TraceIDKey
	sessionCtxKey ctxKey = SessionIDKey
)

// WithTraceID 将 trace_id 写入 context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceCtxKey, traceID)
}

// WithSessionID websocket 会话的日志上下文
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sessionID)
}

// TraceIDFrom 读取 trace_id
func TraceIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceCtxKey).(string)
	return id
}

// ContextHandler 包装器，用于从 ctx 中提取 trace_id 与 session_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(traceCtxKey).(string); ok && traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if sessionID, ok := ctx.Value(sessionCtxKey).(string); ok && sessionID != "" {
			r.AddAttrs(log.String(SessionIDKey, sessionID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}
