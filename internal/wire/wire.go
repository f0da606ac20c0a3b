package wire

import (
	"ManadaBook/internal/api"
	"ManadaBook/internal/api/config"
	"ManadaBook/internal/api/handler"
	"ManadaBook/internal/job"
	"ManadaBook/internal/pkg/cron"
	"ManadaBook/internal/repository"
	"ManadaBook/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	CronMgr *cron.Manager
}

func BuildApplication(db *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	momentRepo := repository.NewMomentRepo(db)
	engagementRepo := repository.NewEngagementRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	pushService := service.NewPushService()
	momentService := service.NewMomentService(momentRepo)
	engagementService := service.NewEngagementService(engagementRepo, momentRepo, pushService)
	notificationService := service.NewNotificationService(notificationRepo)

	handlers := &api.HandlersGroup{
		MomentHandler:       handler.NewMomentHandler(momentService),
		EngagementHandler:   handler.NewEngagementHandler(engagementService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		MediaHandler:        handler.NewMediaHandler(),
		CleanupHandler:      handler.NewCleanupHandler(momentService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		job.NewMomentSweepJob(momentService),
		job.NewCounterReconcileJob(engagementService),
	)

	return &ApplicationContainer{
		Router:  router,
		CronMgr: cronMgr,
	}, nil
}
