package storageconfigs

import (
	"context"
	"sort"
	"sync"

	"dms-backend/internal/providers"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]StorageConfig
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]StorageConfig)}
}

func key(userID string, provider providers.Provider) string {
	return userID + "|" + string(provider)
}

func (r *MemoryRepo) Upsert(ctx context.Context, cfg StorageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key(cfg.UserID, cfg.Provider)] = cfg
	return nil
}

func (r *MemoryRepo) GetByProvider(ctx context.Context, userID string, provider providers.Provider) (StorageConfig, error) {
	if err := ctx.Err(); err != nil {
		return StorageConfig{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[key(userID, provider)]
	if !ok {
		return StorageConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]StorageConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []StorageConfig
	for _, cfg := range r.items {
		if cfg.UserID == userID {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string, provider providers.Provider) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(userID, provider)
	if _, ok := r.items[k]; !ok {
		return ErrNotFound
	}
	delete(r.items, k)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
