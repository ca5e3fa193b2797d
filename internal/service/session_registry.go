package service

import (
	"Huddle/internal/pkg/metrics"
	"context"
	"errors"
	log "log/slog"
	"sync"
)

// LiveSession 一个在线的同步会话
type LiveSession interface {
	ID() string
	UserID() uint64
	Sync() SyncService
	Close()
}

// SessionRegistry 本实例的在线会话
type SessionRegistry interface {
	Register(sess LiveSession)
	Unregister(id string)
	// ResetUser 清空并关闭该用户的全部会话，返回关闭数量
	ResetUser(userID uint64) int
	ReloadAll(ctx context.Context) error
	Count() int
}

type sessionRegistryImpl struct {
	mu       sync.RWMutex
	sessions map[string]LiveSession
}

func NewSessionRegistry() SessionRegistry {
	return &sessionRegistryImpl{sessions: make(map[string]LiveSession)}
}

func (s *sessionRegistryImpl) Register(sess LiveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID()]; !ok {
		metrics.ActiveSessions.Inc()
	}
	s.sessions[sess.ID()] = sess
}

func (s *sessionRegistryImpl) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}

func (s *sessionRegistryImpl) ResetUser(userID uint64) int {
	if userID == 0 {
		return 0
	}
	s.mu.RLock()
	var targets []LiveSession
	for _, sess := range s.sessions {
		if sess.UserID() == userID {
			targets = append(targets, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range targets {
		sess.Sync().Reset()
		sess.Close()
	}
	if len(targets) > 0 {
		log.Info("user sessions reset", "user_id", userID, "count", len(targets))
	}
	return len(targets)
}

func (s *sessionRegistryImpl) ReloadAll(ctx context.Context) error {
	s.mu.RLock()
	all := make([]LiveSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	var errs []error
	for _, sess := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sess.Sync().ReloadAll(ctx); err != nil {
			log.WarnContext(ctx, "session reload failed", "session_id", sess.ID(), "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *sessionRegistryImpl) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
