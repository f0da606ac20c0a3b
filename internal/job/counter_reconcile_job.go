package job

import (
	"ManadaBook/internal/pkg/consts"
	"ManadaBook/internal/pkg/logger"
	"ManadaBook/internal/pkg/redis"
	"ManadaBook/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const reconcileLockTTL = 30 * time.Minute

// CounterReconcileJob 对账任务：按边的真实数量校正冗余计数
// 并发写入造成的计数漂移在这里被修复，而不是在 Toggle 路径上补偿
type CounterReconcileJob struct {
	engagementSvc service.EngagementService
}

func NewCounterReconcileJob(engagementSvc service.EngagementService) *CounterReconcileJob {
	return &CounterReconcileJob{engagementSvc: engagementSvc}
}

func (s *CounterReconcileJob) Run() {
	traceID := "job-reconcile-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	lockValue := uuid.NewString()
	locked, err := redis.TryLock(ctx, consts.CounterReconcileLock, lockValue, reconcileLockTTL, 0)
	if err != nil {
		log.ErrorContext(ctx, "failed to acquire reconcile lock", "err", err)
		return
	}
	if !locked {
		log.InfoContext(ctx, "counter reconcile already running, skipped")
		return
	}
	defer redis.UnLock(ctx, consts.CounterReconcileLock, lockValue)

	fixed, err := s.engagementSvc.Reconcile(ctx)
	if err != nil {
		log.ErrorContext(ctx, "counter reconcile failed", "fixed", fixed, "err", err)
		return
	}

	log.InfoContext(ctx, "counter reconcile finished", "fixed", fixed)
}
