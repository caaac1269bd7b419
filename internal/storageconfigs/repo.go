package storageconfigs

import (
	"context"

	"dms-backend/internal/providers"
)

// Repo defines persistence operations for storage configs.
type Repo interface {
	Upsert(ctx context.Context, cfg StorageConfig) error
	GetByProvider(ctx context.Context, userID string, provider providers.Provider) (StorageConfig, error)
	ListByUser(ctx context.Context, userID string) ([]StorageConfig, error)
	Delete(ctx context.Context, userID string, provider providers.Provider) error
}
