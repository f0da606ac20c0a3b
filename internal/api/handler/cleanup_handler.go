package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/pkg/response"
	"ManadaBook/internal/service"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

type CleanupHandler struct {
	momentSvc service.MomentService
}

func NewCleanupHandler(momentSvc service.MomentService) *CleanupHandler {
	return &CleanupHandler{
		momentSvc: momentSvc,
	}
}

// Cleanup 供外部调度器触发的过期清理入口，与内部定时任务执行同一份逻辑
func (s *CleanupHandler) Cleanup(c *gin.Context) {
	ctx := c.Request.Context()

	retired, err := s.momentSvc.SweepExpired(ctx)
	if err != nil {
		log.ErrorContext(ctx, "cleanup sweep failed", "err", err)
		response.Error(c, err)
		return
	}

	log.InfoContext(ctx, "cleanup sweep finished", "retired", retired)
	response.Success(c, &dto.CleanupDTO{
		Message:   "cleanup completed",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		JobType:   "moments_cleanup",
		Retired:   retired,
	})
}
