package scans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"dms-backend/internal/document"
	"dms-backend/internal/mapping"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const selectColumns = `
id, user_id, storage_key, file_url, file_name, mime_type, size_bytes, provider, status,
stored_file_id, suggested_name, folder_path, extracted, suggestions, error_message,
created_at, started_at, completed_at, updated_at`

// Create inserts a new scan.
func (r *PGRepo) Create(ctx context.Context, scan Scan) error {
	const query = `
INSERT INTO scans (
	id, user_id, storage_key, file_url, file_name, mime_type, size_bytes, provider, status,
	created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		scan.ID,
		scan.UserID,
		scan.StorageKey,
		scan.FileURL,
		scan.FileName,
		scan.MimeType,
		scan.SizeBytes,
		scan.Provider,
		scan.Status,
		scan.CreatedAt,
		scan.UpdatedAt,
	)
	return err
}

// GetByID returns a scan by its ID.
func (r *PGRepo) GetByID(ctx context.Context, scanID string) (Scan, error) {
	query := `SELECT ` + selectColumns + ` FROM scans WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, scanID)
	scan, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, ErrNotFound
	}
	return scan, err
}

// ListByUser returns scans for a user, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + selectColumns + ` FROM scans WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// UpdateStatus updates the status, error and timestamps for an existing scan.
func (r *PGRepo) UpdateStatus(ctx context.Context, scanID, status string, errorMessage *string, startedAt, completedAt *time.Time) error {
	const query = `
UPDATE scans
SET status = $2,
	error_message = COALESCE($3, error_message),
	started_at = COALESCE($4, started_at),
	completed_at = COALESCE($5, completed_at),
	updated_at = NOW()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, scanID, status, errorMessage, startedAt, completedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOutcome records the pipeline results and marks the scan completed.
func (r *PGRepo) UpdateOutcome(ctx context.Context, scanID string, outcome Outcome) error {
	extractedJSON, err := marshalJSONB(outcome.Extracted)
	if err != nil {
		return err
	}
	suggestionsJSON, err := marshalJSONB(outcome.Suggestions)
	if err != nil {
		return err
	}
	const query = `
UPDATE scans
SET status = $2,
	stored_file_id = $3,
	suggested_name = $4,
	folder_path = $5,
	extracted = $6,
	suggestions = $7,
	completed_at = $8,
	updated_at = NOW()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, scanID, StatusCompleted,
		outcome.StoredFileID, outcome.SuggestedName, outcome.FolderPath,
		extractedJSON, suggestionsJSON, outcome.CompletedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var (
		scan            Scan
		storedFileID    sql.NullString
		suggestedName   sql.NullString
		folderPath      sql.NullString
		extractedJSON   []byte
		suggestionsJSON []byte
		errorMessage    sql.NullString
		startedAt       sql.NullTime
		completedAt     sql.NullTime
	)
	if err := row.Scan(
		&scan.ID,
		&scan.UserID,
		&scan.StorageKey,
		&scan.FileURL,
		&scan.FileName,
		&scan.MimeType,
		&scan.SizeBytes,
		&scan.Provider,
		&scan.Status,
		&storedFileID,
		&suggestedName,
		&folderPath,
		&extractedJSON,
		&suggestionsJSON,
		&errorMessage,
		&scan.CreatedAt,
		&startedAt,
		&completedAt,
		&scan.UpdatedAt,
	); err != nil {
		return Scan{}, err
	}
	scan.StoredFileID = storedFileID.String
	scan.SuggestedName = suggestedName.String
	scan.FolderPath = folderPath.String
	if len(extractedJSON) > 0 {
		var extracted document.ExtractedDocument
		if err := json.Unmarshal(extractedJSON, &extracted); err != nil {
			return Scan{}, err
		}
		scan.Extracted = &extracted
	}
	if len(suggestionsJSON) > 0 {
		var suggestions []mapping.Suggestion
		if err := json.Unmarshal(suggestionsJSON, &suggestions); err != nil {
			return Scan{}, err
		}
		scan.Suggestions = suggestions
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		scan.ErrorMessage = &msg
	}
	if startedAt.Valid {
		t := startedAt.Time
		scan.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		scan.CompletedAt = &t
	}
	return scan, nil
}
