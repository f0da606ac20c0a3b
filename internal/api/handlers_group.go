package api

import "ManadaBook/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	MomentHandler       *handler.MomentHandler
	EngagementHandler   *handler.EngagementHandler
	NotificationHandler *handler.NotificationHandler
	MediaHandler        *handler.MediaHandler
	CleanupHandler      *handler.CleanupHandler
}
