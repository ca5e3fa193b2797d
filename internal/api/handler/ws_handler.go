package handler

import (
	"Huddle/internal/api/config"
	"Huddle/internal/pkg/logger"
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/pkg/util"
	"Huddle/internal/service"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SyncFactory 为每个会话创建独立的同步控制器
type SyncFactory func(viewerID uint64, observer service.Observer) service.SyncService

type WsHandler struct {
	chatSvc  service.ChatService
	registry service.SessionRegistry
	newSync  SyncFactory
	limits   *ratelimit.Pool
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWsHandler(chatSvc service.ChatService, registry service.SessionRegistry, newSync SyncFactory, limits *ratelimit.Pool,
	cfg config.WebSocketConfig, allowedOrigins []string) *WsHandler {
	return &WsHandler{
		chatSvc:  chatSvc,
		registry: registry,
		newSync:  newSync,
		limits:   limits,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || util.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

// Connect 匿名连接只能订阅频道与子话题
func (s *WsHandler) Connect(c *gin.Context) {
	userID := c.GetUint64("user_id")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}

	sessionID := uuid.NewString()
	ctx := logger.WithSessionID(c.Request.Context(), sessionID)

	sess := newWsSession(sessionID, userID, conn, s.chatSvc, s.limits.NewLimiter(), s.cfg)
	sess.sync = s.newSync(userID, sess)

	s.registry.Register(sess)
	defer s.registry.Unregister(sessionID)

	log.InfoContext(ctx, "用户 WS 连接已建立", "userID", userID)
	sess.run(ctx)
	log.InfoContext(ctx, "用户 WS 连接已断开", "userID", userID)
}
