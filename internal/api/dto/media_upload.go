package dto

// MediaUploadDTO 上传结果
type MediaUploadDTO struct {
	ObjectKey string `json:"objectKey"`
	PublicURL string `json:"publicUrl"`
}

// CleanupDTO 清理端点的返回
type CleanupDTO struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	JobType   string `json:"jobType"`
	Retired   int64  `json:"retired"`
}
