package dto

// NotificationDTO 互动通知
type NotificationDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	ActorID   uint64 `json:"actorId"`
	TargetID  string `json:"targetId"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

// NotificationReadReq 标记已读
type NotificationReadReq struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// UnreadCountDTO 未读数量
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}
