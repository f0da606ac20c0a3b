package repository

import (
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/consts"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MomentRepo interface {
	CreateMoment(ctx context.Context, moment *model.Moment) error
	GetMoment(ctx context.Context, id string) (*model.Moment, error)
	ListVisible(ctx context.Context, authorID, circleID uint64, now time.Time, limit int64) ([]*model.Moment, error)
	RetireMoment(ctx context.Context, id, reason string, deletedAt *time.Time) (bool, error)
	RetireExpired(ctx context.Context, now time.Time) (int64, []uint64, error)
	AppendView(ctx context.Context, view *model.MomentView) error
	CountActiveByAuthor(ctx context.Context, authorID uint64, now time.Time) (int64, error)
	SetAuthorStatus(ctx context.Context, authorID uint64, active bool) error
}

type momentRepoImpl struct {
	moments *mongo.Collection
	views   *mongo.Collection
	authors *mongo.Collection
}

func NewMomentRepo(db *mongo.Database) MomentRepo {
	return &momentRepoImpl{
		moments: db.Collection("moments"),
		views:   db.Collection("moment_views"),
		authors: db.Collection("author_status"),
	}
}

func (s *momentRepoImpl) CreateMoment(ctx context.Context, moment *model.Moment) error {
	if _, err := s.moments.InsertOne(ctx, moment); err != nil {
		return errors.Wrap(err, "insert moment")
	}
	return nil
}

func (s *momentRepoImpl) GetMoment(ctx context.Context, id string) (*model.Moment, error) {
	var moment model.Moment
	err := s.moments.FindOne(ctx, bson.M{"_id": id}).Decode(&moment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find moment")
	}
	return &moment, nil
}

// ListVisible 查询可见动态：is_active 且 expires_at > now
// 写侧的 is_active 理论上已经覆盖了过期情况，但仍然在读侧重查 expires_at，
// 防止已过期但尚未被清理任务处理的动态从索引中漏出来
func (s *momentRepoImpl) ListVisible(ctx context.Context, authorID, circleID uint64, now time.Time, limit int64) ([]*model.Moment, error) {
	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
	}
	if authorID > 0 {
		filter["author_id"] = authorID
	}
	if circleID > 0 {
		filter["circle_id"] = circleID
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.moments.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find visible moments")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var moments []*model.Moment
	if err := cursor.All(ctx, &moments); err != nil {
		return nil, errors.Wrap(err, "decode visible moments")
	}

	return moments, nil
}

// RetireMoment 下线单条动态，只命中仍然活跃的文档，重复下线是安全的空操作
func (s *momentRepoImpl) RetireMoment(ctx context.Context, id, reason string, deletedAt *time.Time) (bool, error) {
	set := bson.M{
		"is_active":      false,
		"retired_reason": reason,
	}
	if deletedAt != nil {
		set["deleted_at"] = deletedAt
	}

	res, err := s.moments.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, errors.Wrap(err, "retire moment")
	}
	return res.ModifiedCount > 0, nil
}

// RetireExpired 批量下线已过期的动态，返回下线数量与受影响的作者
// 过滤条件每次调用都重新求值，中途失败留下的残留会被下一次扫描接住
func (s *momentRepoImpl) RetireExpired(ctx context.Context, now time.Time) (int64, []uint64, error) {
	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$lte": now},
	}

	authorIDs, err := s.moments.Distinct(ctx, "author_id", filter)
	if err != nil {
		return 0, nil, errors.Wrap(err, "distinct expired authors")
	}

	res, err := s.moments.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"is_active":      false,
			"retired_reason": consts.RetireReasonExpiry,
		},
	})
	if err != nil {
		return 0, nil, errors.Wrap(err, "retire expired moments")
	}

	authors := make([]uint64, 0, len(authorIDs))
	for _, raw := range authorIDs {
		switch v := raw.(type) {
		case int64:
			authors = append(authors, uint64(v))
		case int32:
			authors = append(authors, uint64(v))
		}
	}

	return res.ModifiedCount, authors, nil
}

// AppendView 记录一次浏览并累加浏览数，两个写入走同一个事务
func (s *momentRepoImpl) AppendView(ctx context.Context, view *model.MomentView) error {
	session, err := s.moments.Database().Client().StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.views.InsertOne(sc, view); err != nil {
			return nil, errors.Wrap(err, "insert view")
		}
		_, err := s.moments.UpdateOne(sc,
			bson.M{"_id": view.MomentID},
			bson.M{"$inc": bson.M{"stats.views_count": 1}},
		)
		if err != nil {
			return nil, errors.Wrap(err, "increment views count")
		}
		return nil, nil
	})
	return err
}

func (s *momentRepoImpl) CountActiveByAuthor(ctx context.Context, authorID uint64, now time.Time) (int64, error) {
	count, err := s.moments.CountDocuments(ctx, bson.M{
		"author_id":  authorID,
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, errors.Wrap(err, "count active moments")
	}
	return count, nil
}

// SetAuthorStatus 维护作者的限时动态发现标记
func (s *momentRepoImpl) SetAuthorStatus(ctx context.Context, authorID uint64, active bool) error {
	upsert := true
	_, err := s.authors.UpdateOne(ctx,
		bson.M{"_id": authorID},
		bson.M{"$set": bson.M{
			"has_active_moments": active,
			"updated_at":         time.Now(),
		}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	if err != nil {
		return errors.Wrap(err, "set author status")
	}
	return nil
}
