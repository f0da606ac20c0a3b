package cron

import (
	"ManadaBook/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	momentSweepJob      *job.MomentSweepJob
	counterReconcileJob *job.CounterReconcileJob
}

func NewCronManager(momentSweepJob *job.MomentSweepJob, counterReconcileJob *job.CounterReconcileJob) *Manager {
	return &Manager{
		engine:              cron.New(cron.WithSeconds()),
		momentSweepJob:      momentSweepJob,
		counterReconcileJob: counterReconcileJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every 10m", s.momentSweepJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@daily", s.counterReconcileJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("cron engine started")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("cron engine stopped")
	s.engine.Stop()
}
