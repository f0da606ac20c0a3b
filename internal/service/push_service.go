package service

import (
	"ManadaBook/internal/api/config"
	"ManadaBook/internal/model"
	"context"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// PushService 把互动通知转发到外部 Web Push 网关，失败只记日志不重试
type PushService interface {
	Send(ctx context.Context, notif *model.Notification)
}

type pushServiceImpl struct {
	client *resty.Client
}

func NewPushService() PushService {
	cfg := config.Cfg.Push

	timeout := 5 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-Api-Key", cfg.APIKey)
	}

	return &pushServiceImpl{client: client}
}

func (s *pushServiceImpl) Send(ctx context.Context, notif *model.Notification) {
	cfg := config.Cfg.Push
	if cfg.GatewayURL == "" {
		return
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"user_id":   notif.UserID,
			"kind":      notif.Kind,
			"actor_id":  notif.ActorID,
			"target_id": notif.TargetID,
		}).
		Post(cfg.GatewayURL)

	if err != nil {
		log.WarnContext(ctx, "push gateway request failed", "err", err)
		return
	}
	if resp.IsError() {
		log.WarnContext(ctx, "push gateway rejected event",
			"status", resp.StatusCode(), "body", resp.String())
	}
}
