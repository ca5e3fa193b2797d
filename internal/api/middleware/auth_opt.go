package middleware

import (
	"Huddle/internal/pkg/security"
	"Huddle/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败、缺失或已注销则 UID 为 0
func AuthOptionalMiddleware(revocations service.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, uint64(0))

		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			c.Next()
			return
		}
		if revoked, err := revocations.IsRevoked(c.Request.Context(), signature); err != nil || revoked {
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, tokenString)
		c.Next()
	}
}
