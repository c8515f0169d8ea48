package storage

import (
	"context"
	"fmt"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	infraconfig "github.com/estatebook/backend/internal/infrastructure/config"
)

// New builds the backend selected by cfg.Driver and makes sure its bucket exists
func New(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...Option) (bookingapp.DocumentStorage, error) {
	switch cfg.Driver {
	case infraconfig.StorageDriverS3:
		s, err := NewS3DocumentStorage(ctx, cfg, opts...)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case infraconfig.StorageDriverMinio:
		s, err := NewMinioDocumentStorage(cfg, opts...)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case infraconfig.StorageDriverStub, "":
		return NewMemoryDocumentStorage(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
