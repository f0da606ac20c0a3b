package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/response"
	"ManadaBook/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type EngagementHandler struct {
	engagementSvc service.EngagementService
}

func NewEngagementHandler(engagementSvc service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementSvc: engagementSvc,
	}
}

// Toggle 翻转一条互动边（like / reaction / follow / member / attend）
func (s *EngagementHandler) Toggle(c *gin.Context) {
	userID := c.GetUint64("user_id")
	relation := model.RelationType(c.Param("relation"))
	targetID := c.Param("target_id")

	state, err := s.engagementSvc.Toggle(c.Request.Context(), relation, userID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ToggleDTO{State: string(state)})
}

func (s *EngagementHandler) Block(c *gin.Context) {
	userID := c.GetUint64("user_id")

	targetUserID, err := strconv.ParseUint(c.Param("target_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.engagementSvc.Block(c.Request.Context(), userID, targetUserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *EngagementHandler) GetEdgeCount(c *gin.Context) {
	relation := model.RelationType(c.Param("relation"))
	targetID := c.Param("target_id")

	count, err := s.engagementSvc.GetEdgeCount(c.Request.Context(), relation, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.EdgeCountDTO{Count: count})
}

// GetEdgeState 一次取回计数与当前用户的边状态，两路查询并发执行
func (s *EngagementHandler) GetEdgeState(c *gin.Context) {
	userID := c.GetUint64("user_id")
	relation := model.RelationType(c.Param("relation"))
	targetID := c.Param("target_id")

	var (
		count  int64
		active bool
	)

	eg, ctx := errgroup.WithContext(c.Request.Context())
	eg.Go(func() error {
		var err error
		count, err = s.engagementSvc.GetEdgeCount(ctx, relation, targetID)
		return err
	})
	eg.Go(func() error {
		var err error
		active, err = s.engagementSvc.HasEdge(ctx, relation, userID, targetID)
		return err
	})

	if err := eg.Wait(); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.EdgeStateDTO{Count: count, Active: active})
}
