package dto

// MomentCreateReq 发布限时动态
type MomentCreateReq struct {
	MediaURL  string   `json:"mediaUrl" binding:"required"`
	MediaType string   `json:"mediaType" binding:"required,oneof=image video"`
	Content   string   `json:"content"`
	Duration  float64  `json:"duration"`
	CircleID  uint64   `json:"circleId"`
	Tags      []string `json:"tags"`
}

// MomentViewReq 上报浏览
type MomentViewReq struct {
	Completed bool `json:"completed"`
}

// MomentDTO 返回给前端的动态
type MomentDTO struct {
	ID             string   `json:"id"`
	AuthorID       uint64   `json:"authorId"`
	MediaURL       string   `json:"mediaUrl"`
	MediaType      string   `json:"mediaType"`
	Content        string   `json:"content,omitempty"`
	Duration       float64  `json:"duration,omitempty"`
	CircleID       uint64   `json:"circleId,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	ExpiresAt      string   `json:"expiresAt"`
	ViewsCount     int64    `json:"viewsCount"`
	LikesCount     int64    `json:"likesCount"`
	ReactionsCount int64    `json:"reactionsCount"`
}

// MomentListDTO 列表返回，source 标识数据来源（live / fallback）
type MomentListDTO struct {
	List   []*MomentDTO `json:"list"`
	Total  int          `json:"total"`
	Source string       `json:"source"`
}
