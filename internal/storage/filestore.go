package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStore 文件存储. Callers persist only the opaque reference it
// returns; the store never interprets file contents.
type FileStore interface {
	Save(ctx context.Context, prefix string, reader io.Reader, fileName string, fileSize int64, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// MinIOStore MinIO文件存储
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// Config MinIO连接配置
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIOStore 创建MinIO文件存储
func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

// Save 上传文件, returns the object reference.
func (s *MinIOStore) Save(ctx context.Context, prefix string, reader io.Reader, fileName string, fileSize int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return objectName, nil
}

// Open 读取文件
func (s *MinIOStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}

// NoopStore keeps the pipeline usable when object storage is not
// configured; references still get generated so records stay consistent.
type NoopStore struct{}

func (NoopStore) Save(ctx context.Context, prefix string, reader io.Reader, fileName string, fileSize int64, contentType string) (string, error) {
	return fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName)), nil
}

func (NoopStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("storage not configured")
}
