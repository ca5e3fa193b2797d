package redis

import (
	"Huddle/internal/pkg/consts"
	"context"
	"time"
)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// Exists 键是否存在
func Exists(ctx context.Context, key string) (bool, error) {
	n, err := Rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TokenRevocation 已注销 Token 的签名黑名单
type TokenRevocation struct{}

// Revoke 黑名单保留到 Token 自然过期
func (TokenRevocation) Revoke(ctx context.Context, signature string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetWithExpiration(ctx, consts.AuthRevokedKey+signature, 1, ttl)
}

func (TokenRevocation) IsRevoked(ctx context.Context, signature string) (bool, error) {
	return Exists(ctx, consts.AuthRevokedKey+signature)
}
