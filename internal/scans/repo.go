package scans

import (
	"context"
	"time"

	"dms-backend/internal/document"
	"dms-backend/internal/mapping"
)

// Repo defines persistence operations for scans.
type Repo interface {
	Create(ctx context.Context, scan Scan) error
	GetByID(ctx context.Context, scanID string) (Scan, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Scan, error)
	UpdateStatus(ctx context.Context, scanID, status string, errorMessage *string, startedAt, completedAt *time.Time) error
	UpdateOutcome(ctx context.Context, scanID string, outcome Outcome) error
}

// Outcome carries the results of a completed scan pipeline run.
type Outcome struct {
	StoredFileID  string
	SuggestedName string
	FolderPath    string
	Extracted     *document.ExtractedDocument
	Suggestions   []mapping.Suggestion
	CompletedAt   time.Time
}
