package repository

import (
	"ManadaBook/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EngagementRepo interface {
	Toggle(ctx context.Context, edge *model.EngagementEdge, notif *model.Notification) (model.EdgeState, error)
	Block(ctx context.Context, sourceUserID, targetUserID uint64, now time.Time) error
	HasEdge(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (bool, error)
	CountEdges(ctx context.Context, relation model.RelationType, targetID string) (int64, error)
	EdgeCounts(ctx context.Context, relation model.RelationType) (map[string]int64, error)
	CountedTargetIDs(ctx context.Context, relation model.RelationType) ([]string, error)
	SyncCounter(ctx context.Context, relation model.RelationType, targetID string, count int64) (bool, error)
}

type engagementRepoImpl struct {
	edges         *mongo.Collection
	moments       *mongo.Collection
	targets       *mongo.Collection
	notifications *mongo.Collection
}

func NewEngagementRepo(db *mongo.Database) EngagementRepo {
	return &engagementRepoImpl{
		edges:         db.Collection("engagement_edges"),
		moments:       db.Collection("moments"),
		targets:       db.Collection("engagement_targets"),
		notifications: db.Collection("notifications"),
	}
}

func edgeFilter(relation model.RelationType, sourceUserID uint64, targetID string) bson.M {
	return bson.M{
		"relation_type":  relation,
		"source_user_id": sourceUserID,
		"target_id":      targetID,
	}
}

// Toggle 翻转一条互动边，边变更与计数调整在同一个事务内提交
// 先做 delete-if-exists：删到了说明边已存在，走取消路径；没删到则创建
// 计数只在对应的边操作实际生效时调整，所以无竞争时不会降到负数
func (s *engagementRepoImpl) Toggle(ctx context.Context, edge *model.EngagementEdge, notif *model.Notification) (model.EdgeState, error) {
	session, err := s.edges.Database().Client().StartSession()
	if err != nil {
		return "", errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	state := model.EdgeInactive
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.edges.DeleteOne(sc, edgeFilter(edge.RelationType, edge.SourceUserID, edge.TargetID))
		if err != nil {
			return nil, errors.Wrap(err, "delete edge")
		}

		if res.DeletedCount > 0 {
			state = model.EdgeInactive
			return nil, s.adjustCounters(sc, edge, -1)
		}

		if _, err := s.edges.InsertOne(sc, edge); err != nil {
			return nil, errors.Wrap(err, "insert edge")
		}
		if err := s.adjustCounters(sc, edge, 1); err != nil {
			return nil, err
		}
		if notif != nil {
			if _, err := s.notifications.InsertOne(sc, notif); err != nil {
				return nil, errors.Wrap(err, "insert notification")
			}
		}
		state = model.EdgeActive
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// Block 拉黑级联：创建 block 边，同时删除双向的 follow 边
// follow 边的删除是 delete-if-exists，计数按实际删除数回落，边不存在时是安全空操作
func (s *engagementRepoImpl) Block(ctx context.Context, sourceUserID, targetUserID uint64, now time.Time) error {
	session, err := s.edges.Database().Client().StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	targetID := formatUserID(targetUserID)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// 重复拉黑是幂等的：upsert 不会产生第二条边
		upsert := true
		_, err := s.edges.UpdateOne(sc,
			edgeFilter(model.RelationBlock, sourceUserID, targetID),
			bson.M{"$setOnInsert": bson.M{"created_at": now}},
			&options.UpdateOptions{Upsert: &upsert},
		)
		if err != nil {
			return nil, errors.Wrap(err, "upsert block edge")
		}

		// 双向解除关注
		if err := s.removeFollow(sc, sourceUserID, targetUserID); err != nil {
			return nil, err
		}
		if err := s.removeFollow(sc, targetUserID, sourceUserID); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (s *engagementRepoImpl) removeFollow(sc mongo.SessionContext, followerID, followeeID uint64) error {
	res, err := s.edges.DeleteOne(sc, edgeFilter(model.RelationFollow, followerID, formatUserID(followeeID)))
	if err != nil {
		return errors.Wrap(err, "delete follow edge")
	}
	if res.DeletedCount == 0 {
		return nil
	}
	edge := &model.EngagementEdge{
		RelationType: model.RelationFollow,
		SourceUserID: followerID,
		TargetID:     formatUserID(followeeID),
	}
	return s.adjustCounters(sc, edge, -1)
}

// adjustCounters 调整目标实体上的冗余计数
// like/reaction 落在 moments.stats，其余落在 engagement_targets；
// follow 额外维护发起方的 following_count
func (s *engagementRepoImpl) adjustCounters(sc mongo.SessionContext, edge *model.EngagementEdge, delta int64) error {
	field := edge.RelationType.CounterField()
	if field == "" {
		return nil
	}

	if edge.RelationType.MomentScoped() {
		_, err := s.moments.UpdateOne(sc,
			bson.M{"_id": edge.TargetID},
			bson.M{"$inc": bson.M{field: delta}},
		)
		if err != nil {
			return errors.Wrap(err, "adjust moment counter")
		}
		return nil
	}

	upsert := true
	_, err := s.targets.UpdateOne(sc,
		bson.M{"_id": edge.TargetID},
		bson.M{"$inc": bson.M{field: delta}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	if err != nil {
		return errors.Wrap(err, "adjust target counter")
	}

	if edge.RelationType == model.RelationFollow {
		_, err = s.targets.UpdateOne(sc,
			bson.M{"_id": formatUserID(edge.SourceUserID)},
			bson.M{"$inc": bson.M{"following_count": delta}},
			&options.UpdateOptions{Upsert: &upsert},
		)
		if err != nil {
			return errors.Wrap(err, "adjust following counter")
		}
	}
	return nil
}

func (s *engagementRepoImpl) HasEdge(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (bool, error) {
	count, err := s.edges.CountDocuments(ctx, edgeFilter(relation, sourceUserID, targetID))
	if err != nil {
		return false, errors.Wrap(err, "count edge")
	}
	return count > 0, nil
}

func (s *engagementRepoImpl) CountEdges(ctx context.Context, relation model.RelationType, targetID string) (int64, error) {
	count, err := s.edges.CountDocuments(ctx, bson.M{
		"relation_type": relation,
		"target_id":     targetID,
	})
	if err != nil {
		return 0, errors.Wrap(err, "count edges")
	}
	return count, nil
}

// EdgeCounts 按目标聚合某类关系的边数量，对账任务用
func (s *engagementRepoImpl) EdgeCounts(ctx context.Context, relation model.RelationType) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"relation_type": relation}}},
		{{Key: "$group", Value: bson.M{"_id": "$target_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := s.edges.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate edge counts")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			TargetID string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, errors.Wrap(err, "decode edge count")
		}
		counts[row.TargetID] = row.Count
	}
	return counts, cursor.Err()
}

// CountedTargetIDs 列出计数字段非零的目标，用于把失去全部边的目标清回零
func (s *engagementRepoImpl) CountedTargetIDs(ctx context.Context, relation model.RelationType) ([]string, error) {
	field := relation.CounterField()
	if field == "" {
		return nil, nil
	}

	col := s.targets
	if relation.MomentScoped() {
		col = s.moments
	}

	cursor, err := col.Find(ctx, bson.M{field: bson.M{"$gt": 0}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find counted targets")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, errors.Wrap(err, "decode target id")
		}
		ids = append(ids, row.ID)
	}
	return ids, cursor.Err()
}

// SyncCounter 把目标的冗余计数校正为边的真实数量，返回是否发生了修正
func (s *engagementRepoImpl) SyncCounter(ctx context.Context, relation model.RelationType, targetID string, count int64) (bool, error) {
	field := relation.CounterField()
	if field == "" {
		return false, nil
	}

	col := s.targets
	if relation.MomentScoped() {
		col = s.moments
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": targetID, field: bson.M{"$ne": count}},
		bson.M{"$set": bson.M{field: count}},
	)
	if err != nil {
		return false, errors.Wrap(err, "sync counter")
	}
	return res.ModifiedCount > 0, nil
}
