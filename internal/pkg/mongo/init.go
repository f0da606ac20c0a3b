package mongo

import (
	"ManadaBook/internal/api/config"
	"ManadaBook/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 建立连接并返回 Database 引用，同时初始化索引
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)

	if err = ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}

// ensureIndexes 建立核心集合的索引
// engagement_edges 采用单边表 + 双向二级索引，替代两侧各写一份的子集合方案
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := true
	_, err := db.Collection("engagement_edges").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "relation_type", Value: 1},
				{Key: "source_user_id", Value: 1},
				{Key: "target_id", Value: 1},
			},
			Options: &options.IndexOptions{Unique: &unique},
		},
		{Keys: bson.D{{Key: "relation_type", Value: 1}, {Key: "target_id", Value: 1}}},
		{Keys: bson.D{{Key: "source_user_id", Value: 1}, {Key: "relation_type", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("moments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
