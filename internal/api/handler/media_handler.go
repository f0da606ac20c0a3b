package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/pkg/consts"
	"ManadaBook/internal/pkg/minio"
	"ManadaBook/internal/pkg/response"
	"ManadaBook/internal/pkg/util"
	"ManadaBook/internal/service"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

// Upload 上传动态的图片或视频，返回对象键与公开访问地址
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	isImage := strings.HasPrefix(contentType, consts.MimePrefixImage)
	isVideo := strings.HasPrefix(contentType, consts.MimePrefixVideo)
	if !isImage && !isVideo {
		response.Error(c, service.ErrMediaTypeInvalid)
		return
	}

	ext := path.Ext(file.Filename)
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	response.Success(c, &dto.MediaUploadDTO{
		ObjectKey: fileKey,
		PublicURL: minio.GetPublicURL(fileKey),
	})
}
