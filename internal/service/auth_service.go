package service

import (
	"Huddle/internal/pkg/security"
	"context"
	log "log/slog"
	"time"
)

// RevocationStore Token 黑名单
type RevocationStore interface {
	Revoke(ctx context.Context, signature string, ttl time.Duration) error
	IsRevoked(ctx context.Context, signature string) (bool, error)
}

type AuthService interface {
	// Logout 注销 Token，并重置该用户在本实例上的全部会话
	Logout(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type authServiceImpl struct {
	revocations RevocationStore
	sessions    SessionRegistry
}

func NewAuthService(revocations RevocationStore, sessions SessionRegistry) AuthService {
	return &authServiceImpl{
		revocations: revocations,
		sessions:    sessions,
	}
}

func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return UnauthorizedError
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return UnauthorizedError
	}
	if err = s.revocations.Revoke(ctx, signature, claims.TTL()); err != nil {
		log.ErrorContext(ctx, "revoke token failed", "user_id", claims.UserID, "err", err)
		return UnExpectedError
	}
	closed := s.sessions.ResetUser(claims.UserID)
	log.InfoContext(ctx, "user logged out", "user_id", claims.UserID, "sessions", closed)
	return nil
}

func (s *authServiceImpl) IsRevoked(ctx context.Context, token string) (bool, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return false, UnauthorizedError
	}
	return s.revocations.IsRevoked(ctx, signature)
}
