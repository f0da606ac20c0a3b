package dto

// ToggleDTO Toggle 之后边的新状态
type ToggleDTO struct {
	State string `json:"state"` // active / inactive
}

// EdgeCountDTO 目标实体的冗余计数
type EdgeCountDTO struct {
	Count int64 `json:"count"`
}

// EdgeStateDTO 目标实体的计数 + 当前用户是否存在边
type EdgeStateDTO struct {
	Count  int64 `json:"count"`
	Active bool  `json:"active"`
}
