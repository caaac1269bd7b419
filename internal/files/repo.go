package files

import "context"

// Repo defines persistence operations for stored file records.
type Repo interface {
	Create(ctx context.Context, file StoredFile) error
	GetByID(ctx context.Context, userID, fileID string) (StoredFile, error)
	ListByUser(ctx context.Context, userID string) ([]StoredFile, error)
}
