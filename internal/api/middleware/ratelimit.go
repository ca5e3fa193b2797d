package middleware

import (
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/pkg/response"
	"Huddle/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 登录用户按 UID 限流，匿名按 IP
func RateLimitMiddleware(pool *ratelimit.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if uid := GetUserID(c); uid != 0 {
			key = "uid:" + strconv.FormatUint(uid, 10)
		}

		if !pool.Allow(key) {
			response.Fail(c, response.TooManyRequests, service.ErrRateLimited.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
