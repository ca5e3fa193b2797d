package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Storage 基于全局客户端的附件存储
type Storage struct{}

func NewStorage() *Storage {
	return &Storage{}
}

// UploadFile 上传文件到MinIO，返回对象 key
func (s *Storage) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := Client.PutObject(ctx, MainBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return uploadInfo.Key, nil
}

// PublicURL 获取文件的公共访问URL
func (s *Storage) PublicURL(objectName string) string {
	return PublicURL(PublicBase, MainBucket, objectName)
}

// PublicURL 拼接 base/bucket/object，object 按路径段转义
func PublicURL(base, bucket, objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}
