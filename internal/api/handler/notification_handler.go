package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/pkg/response"
	"ManadaBook/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationSvc: notificationSvc,
	}
}

func (s *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetUint64("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, err := s.notificationSvc.GetNotifications(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, notifications)
}

func (s *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	count, err := s.notificationSvc.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.UnreadCountDTO{Count: count})
}

func (s *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.NotificationReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.notificationSvc.MarkRead(c.Request.Context(), userID, req.IDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
