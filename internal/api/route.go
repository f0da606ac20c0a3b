package api

import (
	"ManadaBook/internal/api/middleware"
	"ManadaBook/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		momentGroup := apiGroup.Group("/moments")
		{
			// 列表与浏览上报允许匿名访问，登录后记录真实 UID
			optGroup := momentGroup.Group("")
			optGroup.Use(middleware.AuthOptionalMiddleware())
			{
				optGroup.GET("", group.MomentHandler.ListMoments)
				optGroup.POST("/:moment_id/view", group.MomentHandler.RecordView)
			}

			authGroup := momentGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.MomentHandler.CreateMoment)
				authGroup.DELETE("/:moment_id", group.MomentHandler.DeleteMoment)
			}
		}

		engagementGroup := apiGroup.Group("/engagement")
		{
			engagementGroup.GET("/:relation/:target_id/count", group.EngagementHandler.GetEdgeCount)

			stateGroup := engagementGroup.Group("")
			stateGroup.Use(middleware.AuthOptionalMiddleware())
			{
				stateGroup.GET("/:relation/:target_id/state", group.EngagementHandler.GetEdgeState)
			}

			authGroup := engagementGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/:relation/:target_id/toggle", group.EngagementHandler.Toggle)
				authGroup.POST("/block/:target_id", group.EngagementHandler.Block)
			}
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("", group.NotificationHandler.GetNotifications)
			notificationGroup.GET("/unread", group.NotificationHandler.GetUnreadCount)
			notificationGroup.POST("/read", group.NotificationHandler.MarkRead)
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}

		internalGroup := apiGroup.Group("/internal")
		internalGroup.Use(middleware.CleanupSecretMiddleware())
		{
			internalGroup.POST("/cleanup", group.CleanupHandler.Cleanup)
		}
	}

	return r
}
