package logger

import (
	"bytes"
	"context"
	log "log/slog"
	"strings"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandlerInjectsTraceAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{log.NewJSONHandler(&buf, nil)})

	ctx := WithSessionID(WithTraceID(context.Background(), "t-1"), "s-1")
	l.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "t-1", rec[TraceIDKey])
	assert.Equal(t, "s-1", rec["session_id"])
	assert.Equal(t, "t-1", TraceIDFrom(ctx))
}

func TestRemoteFilterDropsRecordsWithoutTrace(t *testing.T) {
	var buf bytes.Buffer
	remote := &RemoteFilterHandler{next: log.NewJSONHandler(&buf, nil)}
	l := log.New(&ContextHandler{remote})

	l.Info("no trace")
	assert.Empty(t, buf.String())

	l.InfoContext(WithTraceID(context.Background(), "t-2"), "traced")
	assert.Contains(t, buf.String(), "traced")

	l.Info("ws frame", SessionIDKey, "s-9")
	assert.Contains(t, buf.String(), "s-9")

	l.Warn("relay failed")
	assert.Contains(t, buf.String(), "relay failed")
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var info, warn bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&info, &log.HandlerOptions{Level: log.LevelInfo}),
		log.NewJSONHandler(&warn, &log.HandlerOptions{Level: log.LevelWarn}),
	}}
	l := log.New(tee)

	l.Info("only info")
	assert.Contains(t, info.String(), "only info")
	assert.Empty(t, warn.String())
	assert.False(t, tee.Enabled(context.Background(), log.LevelDebug))
}

func TestTeeHandlerWritesAll(t *testing.T) {
	var a, b bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{log.NewJSONHandler(&a, nil), log.NewJSONHandler(&b, nil)}}
	log.New(tee).With("k", "v").Info("both")

	assert.Contains(t, a.String(), `"k":"v"`)
	assert.Contains(t, b.String(), `"k":"v"`)
}

func TestRedisHookFormatArgs(t *testing.T) {
	h := &RedisLoggerHook{MaxArgsLen: 10}
	assert.Equal(t, "[PROTECTED]", h.formatArgs("auth", []interface{}{"auth", "secret"}))

	out := h.formatArgs("publish", []interface{}{"publish", strings.Repeat("x", 50)})
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, out, 13)
}

func TestGinAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prev := LogWriter
	LogWriter = &buf
	defer func() { LogWriter = prev }()

	r := gin.New()
	SetupGin(r)
	handle := func(c *gin.Context) {
		c.Set(TraceIDKey, "t-3")
		c.Set("user_id", uint64(7))
		c.Status(http.StatusOK)
	}
	r.GET("/api/chat/messages", handle)
	r.GET("/api/ping", handle)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Empty(t, buf.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chat/messages", nil))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "t-3", rec[TraceIDKey])
	assert.Equal(t, float64(7), rec["user_id"])
	assert.Equal(t, "GIN_ACCESS", rec["msg"])
}
