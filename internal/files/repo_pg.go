package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dms-backend/internal/document"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new stored file record.
func (r *PGRepo) Create(ctx context.Context, file StoredFile) error {
	const query = `
INSERT INTO stored_files (
    id,
    user_id,
    file_name,
    file_url,
    storage_provider,
    storage_path,
    mime_type,
    size_bytes,
    ocr_text,
    metadata,
    tags,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	metadata, err := json.Marshal(file.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	tags, err := json.Marshal(file.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	provider := file.StorageProvider
	if provider == "" {
		provider = "Local"
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		file.ID,
		file.UserID,
		file.FileName,
		file.FileURL,
		provider,
		file.StoragePath,
		file.MimeType,
		file.SizeBytes,
		file.OCRText,
		metadata,
		tags,
		file.CreatedAt,
	)
	return err
}

const selectColumns = `id, user_id, file_name, file_url, storage_provider, storage_path, mime_type, size_bytes, ocr_text, metadata, tags, created_at`

// GetByID fetches a stored file by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, fileID string) (StoredFile, error) {
	query := `
SELECT ` + selectColumns + `
FROM stored_files
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, fileID)
	file, err := scanStoredFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredFile{}, ErrNotFound
		}
		return StoredFile{}, err
	}
	return file, nil
}

// ListByUser returns all stored files for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]StoredFile, error) {
	query := `
SELECT ` + selectColumns + `
FROM stored_files
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredFile
	for rows.Next() {
		file, err := scanStoredFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredFile(row rowScanner) (StoredFile, error) {
	var file StoredFile
	var ocrText sql.NullString
	var metadata, tags []byte

	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.FileName,
		&file.FileURL,
		&file.StorageProvider,
		&file.StoragePath,
		&file.MimeType,
		&file.SizeBytes,
		&ocrText,
		&metadata,
		&tags,
		&file.CreatedAt,
	)
	if err != nil {
		return StoredFile{}, err
	}

	if ocrText.Valid {
		file.OCRText = ocrText.String
	}
	if len(metadata) > 0 {
		var doc document.ExtractedDocument
		if err := json.Unmarshal(metadata, &doc); err != nil {
			return StoredFile{}, fmt.Errorf("decode metadata: %w", err)
		}
		file.Metadata = doc
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &file.Tags); err != nil {
			return StoredFile{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return file, nil
}
