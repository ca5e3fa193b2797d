package job

import (
	"Huddle/internal/service"
	"context"
	log "log/slog"
	"time"
)

const reconcileTimeout = 2 * time.Minute

// ReconcileJob 定期为所有会话重新拉取快照，弥补实时通道丢失的事件
type ReconcileJob struct {
	sessions service.SessionRegistry
}

func NewReconcileJob(sessions service.SessionRegistry) *ReconcileJob {
	return &ReconcileJob{sessions: sessions}
}

func (s *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	count := s.sessions.Count()
	if count == 0 {
		return
	}
	log.Info("start reconcile job", "sessions", count)

	start := time.Now()
	if err := s.sessions.ReloadAll(ctx); err != nil {
		log.Warn("reconcile job finished with errors", "err", err, "cost", time.Since(start))
		return
	}
	log.Info("reconcile job finished", "sessions", count, "cost", time.Since(start))
}
