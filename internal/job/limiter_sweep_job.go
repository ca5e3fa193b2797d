package job

import (
	"Huddle/internal/pkg/ratelimit"
	log "log/slog"
)

// LimiterSweepJob 回收长时间未使用的限流桶
type LimiterSweepJob struct {
	pools []*ratelimit.Pool
}

func NewLimiterSweepJob(pools ...*ratelimit.Pool) *LimiterSweepJob {
	return &LimiterSweepJob{pools: pools}
}

func (s *LimiterSweepJob) Run() {
	removed := 0
	for _, p := range s.pools {
		removed += p.Sweep()
	}
	if removed > 0 {
		log.Info("limiter sweep finished", "removed", removed)
	}
}
