package scans

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores scans in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Scan
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Scan),
		byUser: make(map[string][]string),
	}
}

var _ Repo = (*MemoryRepo)(nil)

// Create stores the scan.
func (r *MemoryRepo) Create(ctx context.Context, scan Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[scan.ID] = scan
	r.byUser[scan.UserID] = append(r.byUser[scan.UserID], scan.ID)
	return nil
}

// GetByID returns a scan by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, scanID string) (Scan, error) {
	if err := ctx.Err(); err != nil {
		return Scan{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	scan, ok := r.byID[scanID]
	if !ok {
		return Scan{}, ErrNotFound
	}
	return scan, nil
}

// ListByUser returns scans for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	scans := make([]Scan, 0, len(ids))
	for _, id := range ids {
		scans = append(scans, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(scans, func(i, j int) bool {
		return scans[i].CreatedAt.After(scans[j].CreatedAt)
	})

	if offset >= len(scans) {
		return []Scan{}, nil
	}
	end := len(scans)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return scans[offset:end], nil
}

// UpdateStatus updates the status, error and timestamps for an existing scan.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, scanID, status string, errorMessage *string, startedAt, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	scan, ok := r.byID[scanID]
	if !ok {
		return ErrNotFound
	}
	scan.Status = status
	if errorMessage != nil {
		scan.ErrorMessage = errorMessage
	}
	if startedAt != nil {
		scan.StartedAt = startedAt
	} else if status == StatusProcessing && scan.StartedAt == nil {
		now := time.Now().UTC()
		scan.StartedAt = &now
	}
	if completedAt != nil {
		scan.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && scan.CompletedAt == nil {
		now := time.Now().UTC()
		scan.CompletedAt = &now
	}
	scan.UpdatedAt = time.Now().UTC()
	r.byID[scanID] = scan
	return nil
}

// UpdateOutcome records the pipeline results and marks the scan completed.
func (r *MemoryRepo) UpdateOutcome(ctx context.Context, scanID string, outcome Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	scan, ok := r.byID[scanID]
	if !ok {
		return ErrNotFound
	}
	scan.Status = StatusCompleted
	scan.StoredFileID = outcome.StoredFileID
	scan.SuggestedName = outcome.SuggestedName
	scan.FolderPath = outcome.FolderPath
	scan.Extracted = outcome.Extracted
	scan.Suggestions = outcome.Suggestions
	completedAt := outcome.CompletedAt
	scan.CompletedAt = &completedAt
	scan.UpdatedAt = time.Now().UTC()
	r.byID[scanID] = scan
	return nil
}
