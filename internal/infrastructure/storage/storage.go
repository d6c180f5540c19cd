package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewMediaStorage builds the configured MediaStorage. The S3 driver makes
// sure its bucket exists before returning.
func NewMediaStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (catalogapp.MediaStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		s, err := NewS3MediaStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Media storage ready", zap.String("driver", "s3"), zap.String("bucket", s.Bucket()))
		return s, nil
	case config.StorageDriverLocal, "":
		s, err := NewLocalMediaStorage(cfg.LocalDir, cfg.PublicURL, cfg.MaxUploadSize)
		if err != nil {
			return nil, err
		}
		logger.Info("Media storage ready", zap.String("driver", "local"), zap.String("dir", s.Dir()))
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
