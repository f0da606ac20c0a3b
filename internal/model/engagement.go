package model

import "time"

// RelationType 互动关系类型
type RelationType string

const (
	RelationLike     RelationType = "like"
	RelationReaction RelationType = "reaction"
	RelationFollow   RelationType = "follow"
	RelationMember   RelationType = "member"
	RelationAttend   RelationType = "attend"
	RelationBlock    RelationType = "block"
)

// Valid 判断是否为已知的关系类型
func (r RelationType) Valid() bool {
	switch r {
	case RelationLike, RelationReaction, RelationFollow, RelationMember, RelationAttend, RelationBlock:
		return true
	}
	return false
}

// Notifiable 创建该类型边时是否需要给目标用户推送通知
func (r RelationType) Notifiable() bool {
	switch r {
	case RelationLike, RelationFollow, RelationReaction:
		return true
	}
	return false
}

// CounterField 目标实体上对应的冗余计数字段，空串表示该类型不维护计数
func (r RelationType) CounterField() string {
	switch r {
	case RelationLike:
		return "stats.likes_count"
	case RelationReaction:
		return "stats.reactions_count"
	case RelationFollow:
		return "followers_count"
	case RelationMember:
		return "members_count"
	case RelationAttend:
		return "attendees_count"
	}
	return ""
}

// MomentScoped 计数器是否落在 moments 集合的 stats 内嵌文档上
func (r RelationType) MomentScoped() bool {
	return r == RelationLike || r == RelationReaction
}

// EngagementEdge 互动边，(relation_type, source_user_id, target_id) 唯一
// 边的存在是事实来源，目标实体上的计数只是冗余视图
type EngagementEdge struct {
	RelationType RelationType `bson:"relation_type" json:"relationType"`
	SourceUserID uint64       `bson:"source_user_id" json:"sourceUserId"`
	TargetID     string       `bson:"target_id" json:"targetId"`
	CreatedAt    time.Time    `bson:"created_at" json:"createdAt"`
}

// EngagementTarget 非动态类目标（用户/圈子/活动）的计数器文档
type EngagementTarget struct {
	TargetID       string `bson:"_id" json:"targetId"`
	FollowersCount int64  `bson:"followers_count,omitempty" json:"followersCount"`
	MembersCount   int64  `bson:"members_count,omitempty" json:"membersCount"`
	AttendeesCount int64  `bson:"attendees_count,omitempty" json:"attendeesCount"`
}

// EdgeState Toggle 之后边的新状态
type EdgeState string

const (
	EdgeActive   EdgeState = "active"
	EdgeInactive EdgeState = "inactive"
)
