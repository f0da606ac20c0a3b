package job

import (
	"ManadaBook/internal/pkg/logger"
	"ManadaBook/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// MomentSweepJob 定时下线已过期的限时动态
// 清理端点与本任务调用同一个 SweepExpired，二者并发执行也是安全的
type MomentSweepJob struct {
	momentSvc service.MomentService
}

func NewMomentSweepJob(momentSvc service.MomentService) *MomentSweepJob {
	return &MomentSweepJob{momentSvc: momentSvc}
}

func (s *MomentSweepJob) Run() {
	traceID := "job-sweep-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	retired, err := s.momentSvc.SweepExpired(ctx)
	if err != nil {
		log.ErrorContext(ctx, "moment sweep failed", "err", err)
		return
	}

	if retired > 0 {
		log.InfoContext(ctx, "moment sweep finished", "retired", retired)
	}
}
