package util

import (
	"Huddle/internal/model"
	"Huddle/internal/pkg/consts"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ClassifyMime 按 mime 前缀归类附件，其余一律视为文档
func ClassifyMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, consts.MimePrefixImage):
		return model.FileTypeImage
	case strings.HasPrefix(mimeType, consts.MimePrefixVideo):
		return model.FileTypeVideo
	case strings.HasPrefix(mimeType, consts.MimePrefixAudio):
		return model.FileTypeAudio
	default:
		return model.FileTypeDocument
	}
}

// IsFileType 是否为已知附件类型
func IsFileType(t string) bool {
	switch t {
	case model.FileTypeImage, model.FileTypeVideo, model.FileTypeAudio, model.FileTypeDocument:
		return true
	}
	return false
}

// FileNameFromURL 取 URL 路径的最后一段，忽略查询串与片段
func FileNameFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// GetSafeContentType 嗅探内容类型并把读取位置复位
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if _, seekErr := reader.Seek(0, io.SeekStart); seekErr != nil {
		return "", seekErr
	}
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
