package model

import "time"

// MomentStats 动态的冗余计数器，likes_count 可随取消点赞回落，其余只增不减
type MomentStats struct {
	ViewsCount     int64 `bson:"views_count" json:"viewsCount"`
	LikesCount     int64 `bson:"likes_count" json:"likesCount"`
	ReactionsCount int64 `bson:"reactions_count" json:"reactionsCount"`
}

// Moment 24 小时限时动态
// 可见性判定：is_active == true 且 expires_at > now，两个条件相互独立
type Moment struct {
	ID            string      `bson:"_id" json:"id"`
	AuthorID      uint64      `bson:"author_id" json:"authorId"`
	MediaURL      string      `bson:"media_url" json:"mediaUrl"`
	MediaType     string      `bson:"media_type" json:"mediaType"`
	Content       string      `bson:"content,omitempty" json:"content"`
	Duration      float64     `bson:"duration,omitempty" json:"duration"`
	CircleID      uint64      `bson:"circle_id,omitempty" json:"circleId"`
	Tags          []string    `bson:"tags,omitempty" json:"tags"`
	CreatedAt     time.Time   `bson:"created_at" json:"createdAt"`
	ExpiresAt     time.Time   `bson:"expires_at" json:"expiresAt"`
	IsActive      bool        `bson:"is_active" json:"isActive"`
	DeletedAt     *time.Time  `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	RetiredReason string      `bson:"retired_reason,omitempty" json:"retiredReason,omitempty"`
	Stats         MomentStats `bson:"stats" json:"stats"`
}

// Visible 判断动态在时刻 t 是否对读者可见
func (m *Moment) Visible(t time.Time) bool {
	return m.IsActive && m.ExpiresAt.After(t)
}

// MomentView 浏览明细，仅追加，不做去重
type MomentView struct {
	MomentID  string    `bson:"moment_id" json:"momentId"`
	ViewerID  uint64    `bson:"viewer_id" json:"viewerId"`
	Completed bool      `bson:"completed" json:"completed"`
	ViewedAt  time.Time `bson:"viewed_at" json:"viewedAt"`
}

// AuthorStatus 作者的限时动态发现标记（第二个冗余信号）
type AuthorStatus struct {
	AuthorID         uint64    `bson:"_id" json:"authorId"`
	HasActiveMoments bool      `bson:"has_active_moments" json:"hasActiveMoments"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updatedAt"`
}
