package repository

import (
	"ManadaBook/internal/model"
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	GetByUser(ctx context.Context, userID uint64, limit, offset int64) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID uint64, ids []string) (int64, error)
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection("notifications"),
	}
}

func (s *notificationRepoImpl) GetByUser(ctx context.Context, userID uint64, limit, offset int64) ([]*model.Notification, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find notifications")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var notifications []*model.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "decode notifications")
	}
	return notifications, nil
}

func (s *notificationRepoImpl) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, errors.Wrap(err, "count unread")
	}
	return count, nil
}

// MarkRead 只能标记自己的通知
func (s *notificationRepoImpl) MarkRead(ctx context.Context, userID uint64, ids []string) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "mark read")
	}
	return res.ModifiedCount, nil
}
