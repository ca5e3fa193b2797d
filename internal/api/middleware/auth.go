package middleware

import (
	"Huddle/internal/pkg/response"
	"Huddle/internal/pkg/security"
	"Huddle/internal/service"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// bearerToken Authorization 头优先，websocket 握手无法带头部时使用 ?token=
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware(revocations service.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), signature)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "check token revocation failed", "err", err)
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if revoked {
			response.Fail(c, response.Unauthorized, service.ErrTokenRevoked.Error())
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, tokenString)
		c.Next()
	}
}

// GetUserID 未登录时为 0
func GetUserID(c *gin.Context) uint64 {
	return c.GetUint64(UserIDKey)
}
