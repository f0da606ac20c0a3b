package service

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/consts"
	"ManadaBook/internal/pkg/redis"
	"ManadaBook/internal/repository"
	"context"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

const unreadCacheExpiration = 10 * time.Minute

type NotificationService interface {
	GetNotifications(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NotificationDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID uint64, ids []string) error
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationService(notificationRepo repository.NotificationRepo) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *notificationServiceImpl) GetNotifications(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NotificationDTO, error) {
	notifications, err := s.notificationRepo.GetByUser(ctx, userID, int64(pageSize), int64((page-1)*pageSize))
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		res = append(res, s.convertToDTO(n))
	}
	return res, nil
}

func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	key := consts.NotificationUnreadKey + strconv.FormatUint(userID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}

	realCount, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, unreadCacheExpiration)
	return realCount, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID uint64, ids []string) error {
	if len(ids) == 0 {
		return ErrParamInvalid
	}
	if _, err := s.notificationRepo.MarkRead(ctx, userID, ids); err != nil {
		return err
	}
	_ = redis.DeleteKey(ctx, consts.NotificationUnreadKey+strconv.FormatUint(userID, 10))
	return nil
}

func (s *notificationServiceImpl) convertToDTO(n *model.Notification) *dto.NotificationDTO {
	item := &dto.NotificationDTO{}
	_ = copier.Copy(item, n)
	item.CreatedAt = n.CreatedAt.Format("2006-01-02 15:04:05")
	return item
}
