package security

import (
	"Huddle/internal/api/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const JWTExpirationTime = time.Hour * 24

var (
	jwtSecret = []byte("change-me")
	jwtIssuer = ""
)

// Init 使用认证方共享的 HS256 密钥
func Init(cfg config.AuthConfig) {
	if cfg.Secret != "" {
		jwtSecret = []byte(cfg.Secret)
	}
	jwtIssuer = cfg.Issuer
}

// UserClaims 认证方签发的 Token 载荷，只关心稳定的用户 id
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}
