package cron

import (
	"Huddle/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const limiterSweepSpec = "0 */10 * * * *"

type Manager struct {
	engine          *cron.Cron
	reconcileSpec   string
	reconcileJob    *job.ReconcileJob
	limiterSweepJob *job.LimiterSweepJob
}

func NewCronManager(reconcileSpec string, reconcileJob *job.ReconcileJob, limiterSweepJob *job.LimiterSweepJob) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconcileSpec:   reconcileSpec,
		reconcileJob:    reconcileJob,
		limiterSweepJob: limiterSweepJob,
	}
}

// RegisterJobs 注册定时任务，reconcileSpec 为空时不做全量对账
func (s *Manager) RegisterJobs() error {
	if s.reconcileSpec != "" {
		if _, err := s.engine.AddJob(s.reconcileSpec, s.reconcileJob); err != nil {
			return err
		}
	}
	if _, err := s.engine.AddJob(limiterSweepSpec, s.limiterSweepJob); err != nil {
		return err
	}
	return nil
}

// Entries 已注册任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

// InitCron 注册并启动全部定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	log.Info("Cron Jobs starting...", "entries", mgr.Entries())
	mgr.Start()
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
