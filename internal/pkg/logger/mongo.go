package logger

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

// NewMongoMonitor 慢查询与失败命令监控
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration > 200*time.Millisecond {
				log.WarnContext(ctx, "MongoDB Slow",
					log.String("command", evt.CommandName),
					log.Duration("latency", evt.Duration),
					log.String("request_id", fmt.Sprintf("%d", evt.RequestID)),
				)
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.String("request_id", fmt.Sprintf("%d", evt.RequestID)),
				log.Any("err", evt.Failure),
			)
		},
	}
}
