package handler

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) ListChannels(ctx context.Context) ([]*dto.ChannelDTO, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*dto.ChannelDTO)
	return out, args.Error(1)
}

func (m *MockChatService) ListMessages(ctx context.Context, viewerID uint64, key model.ConversationKey, cursor string, limit int) (*dto.MessagePage, error) {
	args := m.Called(ctx, viewerID, key, cursor, limit)
	out, _ := args.Get(0).(*dto.MessagePage)
	return out, args.Error(1)
}

func (m *MockChatService) GetThread(ctx context.Context, viewerID uint64, parentID uint64) ([]*dto.DisplayMessage, error) {
	args := m.Called(ctx, viewerID, parentID)
	out, _ := args.Get(0).([]*dto.DisplayMessage)
	return out, args.Error(1)
}

func (m *MockChatService) SendMessage(ctx context.Context, userID uint64, key model.ConversationKey, body string, files []dto.SendFileReq) (*dto.DisplayMessage, error) {
	args := m.Called(ctx, userID, key, body, files)
	out, _ := args.Get(0).(*dto.DisplayMessage)
	return out, args.Error(1)
}

func (m *MockChatService) EditMessage(ctx context.Context, userID, messageID uint64, body string) (*dto.DisplayMessage, error) {
	args := m.Called(ctx, userID, messageID, body)
	out, _ := args.Get(0).(*dto.DisplayMessage)
	return out, args.Error(1)
}

func (m *MockChatService) DeleteMessage(ctx context.Context, userID, messageID uint64) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

func (m *MockChatService) ToggleReaction(ctx context.Context, userID, messageID uint64, emoji string) (*dto.ToggleReactionResp, error) {
	args := m.Called(ctx, userID, messageID, emoji)
	out, _ := args.Get(0).(*dto.ToggleReactionResp)
	return out, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser 模拟鉴权中间件
func withUser(uid uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uid)
		c.Next()
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r http.Handler, method, target string, body io.Reader, contentType string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func multipartBody(t *testing.T, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

var handlerTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
