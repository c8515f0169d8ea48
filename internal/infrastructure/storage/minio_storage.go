package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	infraconfig "github.com/estatebook/backend/internal/infrastructure/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var _ bookingapp.DocumentStorage = (*MinioDocumentStorage)(nil)

// MinioDocumentStorage stores documents on a MinIO server through minio-go
type MinioDocumentStorage struct {
	client            *minio.Client
	bucket            string
	endpoint          string
	publicBaseURL     string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// NewMinioDocumentStorage connects to the MinIO endpoint. The endpoint is a
// bare host:port; the scheme is chosen by UseSSL.
func NewMinioDocumentStorage(cfg *infraconfig.StorageConfig, opts ...Option) (*MinioDocumentStorage, error) {
	if err := validateCredentials(cfg); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is required for minio")
	}
	o := buildOptions(cfg, opts)

	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioDocumentStorage{
		client:            client,
		bucket:            cfg.Bucket,
		endpoint:          normalizeEndpoint(host, cfg.UseSSL),
		publicBaseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignExpiration: o.presignExpiration,
		logger:            o.logger,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *MinioDocumentStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Put uploads the object, replacing any existing one with the same key
func (s *MinioDocumentStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	s.logger.Debug("Stored document", zap.String("key", info.Key), zap.String("etag", info.ETag))
	return objectURL(s.publicBaseURL, s.endpoint, s.bucket, key), nil
}

// DownloadURL returns a presigned GET URL
func (s *MinioDocumentStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiration, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return u.String(), nil
}

// Delete removes the object
func (s *MinioDocumentStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
