package api

import (
	"Huddle/internal/api/handler"
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/service"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例及路由所需的中间件依赖
type HandlersGroup struct {
	ChatHandler  *handler.ChatHandler
	AuthHandler  *handler.AuthHandler
	MediaHandler *handler.MediaHandler
	WsHandler    *handler.WsHandler

	Revocations    service.RevocationStore
	HTTPLimits     *ratelimit.Pool
	AllowedOrigins []string
}
