package files

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]StoredFile
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]StoredFile)}
}

func (r *MemoryRepo) Create(ctx context.Context, file StoredFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[file.ID] = file
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, fileID string) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.items[fileID]
	if !ok || file.UserID != userID {
		return StoredFile{}, ErrNotFound
	}
	return file, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []StoredFile
	for _, file := range r.items {
		if file.UserID == userID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
