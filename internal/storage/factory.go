package storage

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"portal/internal/config"
)

// New builds the adapter selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageLocal:
		return NewLocal(afero.NewOsFs(), cfg.Local)
	case config.StorageMinIO:
		return NewMinIO(ctx, cfg.MinIO, cfg.SignedURLTTL)
	case config.StorageS3:
		return NewS3(ctx, cfg.S3, cfg.SignedURLTTL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
