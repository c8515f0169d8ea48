// Package storage provides object storage backends for uploaded documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	bookingapp "github.com/estatebook/backend/internal/application/booking"
	infraconfig "github.com/estatebook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ bookingapp.DocumentStorage = (*S3DocumentStorage)(nil)

// S3DocumentStorage stores documents in any S3-compatible bucket via AWS SDK v2
type S3DocumentStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	endpoint          string
	publicBaseURL     string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// Option configures a storage backend
type Option func(*options)

type options struct {
	logger            *zap.Logger
	presignExpiration time.Duration
}

// WithLogger sets the logger used by the backend
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPresignExpiration overrides how long download URLs stay valid
func WithPresignExpiration(d time.Duration) Option {
	return func(o *options) {
		o.presignExpiration = d
	}
}

func buildOptions(cfg *infraconfig.StorageConfig, opts []Option) options {
	o := options{logger: zap.NewNop(), presignExpiration: cfg.PresignExpiration}
	for _, opt := range opts {
		opt(&o)
	}
	if o.presignExpiration <= 0 {
		o.presignExpiration = 15 * time.Minute
	}
	return o
}

func validateCredentials(cfg *infraconfig.StorageConfig) error {
	if cfg == nil {
		return errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return errors.New("storage secret key is required")
	}
	return nil
}

// NewS3DocumentStorage creates an S3 backend. An empty endpoint targets AWS itself.
func NewS3DocumentStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...Option) (*S3DocumentStorage, error) {
	if err := validateCredentials(cfg); err != nil {
		return nil, err
	}
	o := buildOptions(cfg, opts)

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			so.BaseEndpoint = aws.String(endpoint)
		}
	})

	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	return &S3DocumentStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		endpoint:          endpoint,
		publicBaseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignExpiration: o.presignExpiration,
		logger:            o.logger,
	}, nil
}

// normalizeEndpoint prefixes a scheme when the endpoint is a bare host
func normalizeEndpoint(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimRight(endpoint, "/")
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// objectURL builds the stored URL for key: the public base when configured,
// otherwise the path-style bucket URL
func objectURL(publicBaseURL, endpoint, bucket, key string) string {
	if publicBaseURL != "" {
		return publicBaseURL + "/" + key
	}
	return endpoint + "/" + bucket + "/" + key
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3DocumentStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads the object. S3 overwrites an existing key in place.
func (s *S3DocumentStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	s.logger.Debug("Stored document", zap.String("key", key), zap.Int64("size", size))
	return objectURL(s.publicBaseURL, s.endpoint, s.bucket, key), nil
}

// DownloadURL returns a presigned GET URL
func (s *S3DocumentStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, nil
}

// Delete removes the object
func (s *S3DocumentStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3DocumentStorage) Bucket() string {
	return s.bucket
}
