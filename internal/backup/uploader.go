package backup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader copies a finished backup file offsite.
type Uploader interface {
	Upload(ctx context.Context, filePath string) error
}

// S3Config mirrors the backup.s3 settings section.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// s3Client is the part of *minio.Client the uploader needs.
type s3Client interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string) error
}

type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) FPutObject(ctx context.Context, bucket, objectName, filePath string) error {
	_, err := w.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// S3Uploader uploads backups to S3-compatible storage.
type S3Uploader struct {
	client s3Client
	bucket string
	prefix string
}

func (u *S3Uploader) Upload(ctx context.Context, filePath string) error {
	key := u.objectKey(filePath)
	if err := u.client.FPutObject(ctx, u.bucket, key, filePath); err != nil {
		return fmt.Errorf("upload backup to S3: %w", err)
	}
	return nil
}

func (u *S3Uploader) objectKey(filePath string) string {
	return u.prefix + filepath.Base(filePath)
}

// NoopUploader is used when S3 storage is not configured.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string) error { return nil }

// NewUploader returns NoopUploader when no bucket is configured.
func NewUploader(cfg S3Config) (Uploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return NoopUploader{}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "bloomlet/backups/"
	}
	return &S3Uploader{
		client: &minioClientWrapper{client: client},
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}
