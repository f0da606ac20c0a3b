package model

import "time"

// Notification 互动通知，写入目标用户的通知列表
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    uint64    `bson:"user_id" json:"userId"`
	Kind      string    `bson:"kind" json:"kind"` // like / follow / reaction
	ActorID   uint64    `bson:"actor_id" json:"actorId"`
	TargetID  string    `bson:"target_id" json:"targetId"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
