package api

import (
	"Huddle/internal/api/middleware"
	"Huddle/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(group.AllowedOrigins))
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware(group.Revocations)
	authOptional := middleware.AuthOptionalMiddleware(group.Revocations)
	limited := middleware.RateLimitMiddleware(group.HTTPLimits)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		chatGroup := apiGroup.Group("/chat")
		{
			chatGroup.GET("/channels", group.ChatHandler.ListChannels)

			// 频道与子话题允许匿名读取，私信由 service 层拦截
			authOptGroup := chatGroup.Group("")
			authOptGroup.Use(authOptional)
			{
				authOptGroup.GET("/messages", group.ChatHandler.ListMessages)
				authOptGroup.GET("/threads/:message_id", group.ChatHandler.GetThread)
			}

			authGroup := chatGroup.Group("")
			authGroup.Use(authRequired, limited)
			{
				authGroup.POST("/messages", group.ChatHandler.SendMessage)
				authGroup.PUT("/messages/:message_id", group.ChatHandler.EditMessage)
				authGroup.DELETE("/messages/:message_id", group.ChatHandler.DeleteMessage)
				authGroup.POST("/messages/:message_id/reactions", group.ChatHandler.ToggleReaction)
			}
		}

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.Use(authRequired, limited)
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.Use(authRequired)
			authGroup.POST("/logout", group.AuthHandler.Logout)
		}

		imGroup := apiGroup.Group("/im")
		{
			imGroup.Use(authOptional)
			imGroup.GET("/ws", group.WsHandler.Connect)
		}
	}

	return r
}
