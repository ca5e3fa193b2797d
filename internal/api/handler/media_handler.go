package handler

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/pkg/response"
	"Huddle/internal/pkg/util"
	"Huddle/internal/service"
	"context"
	"io"
	log "log/slog"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultMaxUploadSize = 20 << 20

// ObjectUploader 附件对象存储
type ObjectUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	PublicURL(objectName string) string
}

type MediaHandler struct {
	uploader ObjectUploader
	maxSize  int64
}

func NewMediaHandler(uploader ObjectUploader, maxSize int64) *MediaHandler {
	if maxSize <= 0 {
		maxSize = defaultMaxUploadSize
	}
	return &MediaHandler{uploader: uploader, maxSize: maxSize}
}

func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if file.Size > s.maxSize {
		response.Error(c, service.ErrFileTooLarge)
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
		log.WarnContext(c.Request.Context(), "content sniff failed", "filename", file.Filename, "err", err)
		response.Error(c, service.ErrFileNotSupported)
		return
	}
	fileType := util.ClassifyMime(contentType)

	ext := path.Ext(file.Filename)
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	fileKey, err := s.uploader.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	name := path.Base(file.Filename)
	if name == "." || name == "/" {
		name = path.Base(fileKey)
	}

	log.InfoContext(c.Request.Context(), "media upload success", "fileKey", fileKey, "type", contentType)
	response.Success(c, dto.MediaUploadResp{
		URL:      s.uploader.PublicURL(fileKey),
		Type:     fileType,
		Name:     name,
		MimeType: contentType,
		Size:     file.Size,
	})
}
