package repository

import (
	"context"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
)

// ContentRepository persists one snapshot of scraped posts plus the media
// blobs downloaded for them. Each pipeline run replaces the previous
// snapshot wholesale; the store never accumulates history.
type ContentRepository interface {
	// ReplaceAll atomically swaps the stored post set for the given one and
	// returns the records with their assigned IDs.
	ReplaceAll(ctx context.Context, records []models.PostRecord) ([]models.PostRecord, error)

	// ListAll returns the current snapshot in insertion order.
	ListAll(ctx context.Context) ([]models.PostRecord, error)

	// PutBlob stores a media blob under the given key, overwriting any
	// previous blob with the same key.
	PutBlob(ctx context.Context, key string, data []byte, contentType string) error

	// GetBlob returns the blob stored under key.
	GetBlob(ctx context.Context, key string) ([]byte, error)

	// ListBlobs returns refs for all blobs whose key starts with prefix,
	// sorted by key. An empty prefix lists everything.
	ListBlobs(ctx context.Context, prefix string) ([]models.BlobRef, error)

	// ClearBlobs removes all blobs whose key starts with prefix.
	ClearBlobs(ctx context.Context, prefix string) error

	Close() error
}

// New builds the repository named by the storage config.
func New(cfg *config.StorageConfig, log logger.Logger) (ContentRepository, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocalRepository(cfg.DataDir, log)
	case config.BackendCloud:
		return NewCloudRepository(context.Background(), cfg, log)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown storage backend %q", cfg.Backend)
	}
}
