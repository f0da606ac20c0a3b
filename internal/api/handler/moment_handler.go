package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/response"
	"ManadaBook/internal/service"
	log "log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type MomentHandler struct {
	momentSvc service.MomentService
}

func NewMomentHandler(momentSvc service.MomentService) *MomentHandler {
	return &MomentHandler{
		momentSvc: momentSvc,
	}
}

func (s *MomentHandler) CreateMoment(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.MomentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	moment, err := s.momentSvc.CreateMoment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, convertMomentToDTO(moment))
}

// ListMoments 查询当前可见的动态
// 存储层故障时退化为内置示例数据，source 字段区分 live / fallback
func (s *MomentHandler) ListMoments(c *gin.Context) {
	authorID, _ := strconv.ParseUint(c.Query("author_id"), 10, 64)
	circleID, _ := strconv.ParseUint(c.Query("circle_id"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)

	moments, err := s.momentSvc.ListMoments(c.Request.Context(), authorID, circleID, limit)
	if err != nil {
		log.WarnContext(c.Request.Context(), "moment store unavailable, serving fallback", "err", err)
		response.Success(c, fallbackMomentList())
		return
	}

	list := make([]*dto.MomentDTO, 0, len(moments))
	for _, m := range moments {
		list = append(list, convertMomentToDTO(m))
	}

	response.Success(c, &dto.MomentListDTO{
		List:   list,
		Total:  len(list),
		Source: "live",
	})
}

func (s *MomentHandler) RecordView(c *gin.Context) {
	userID := c.GetUint64("user_id")
	momentID := c.Param("moment_id")

	// 空请求体按未看完处理
	var req dto.MomentViewReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, err)
			return
		}
	}

	if err := s.momentSvc.RecordView(c.Request.Context(), momentID, userID, req.Completed); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *MomentHandler) DeleteMoment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	momentID := c.Param("moment_id")

	if err := s.momentSvc.DeleteMoment(c.Request.Context(), momentID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func convertMomentToDTO(m *model.Moment) *dto.MomentDTO {
	return &dto.MomentDTO{
		ID:             m.ID,
		AuthorID:       m.AuthorID,
		MediaURL:       m.MediaURL,
		MediaType:      m.MediaType,
		Content:        m.Content,
		Duration:       m.Duration,
		CircleID:       m.CircleID,
		Tags:           m.Tags,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		ExpiresAt:      m.ExpiresAt.Format(time.RFC3339),
		ViewsCount:     m.Stats.ViewsCount,
		LikesCount:     m.Stats.LikesCount,
		ReactionsCount: m.Stats.ReactionsCount,
	}
}

// fallbackMomentList 存储不可用时的兜底数据，保证客户端首页不至于白屏
func fallbackMomentList() *dto.MomentListDTO {
	now := time.Now()
	list := []*dto.MomentDTO{
		{
			ID:        "sample-1",
			AuthorID:  1,
			MediaURL:  "https://images.unsplash.com/photo-1552053831-71594a27632d?w=400",
			MediaType: "image",
			Content:   "Thor aproveitando o sol da manhã!",
			CreatedAt: now.Add(-2 * time.Hour).Format(time.RFC3339),
			ExpiresAt: now.Add(22 * time.Hour).Format(time.RFC3339),
		},
		{
			ID:        "sample-2",
			AuthorID:  2,
			MediaURL:  "https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?w=400",
			MediaType: "image",
			Content:   "Luna explorando o quintal",
			CreatedAt: now.Add(-5 * time.Hour).Format(time.RFC3339),
			ExpiresAt: now.Add(19 * time.Hour).Format(time.RFC3339),
		},
	}
	return &dto.MomentListDTO{
		List:   list,
		Total:  len(list),
		Source: "fallback",
	}
}
