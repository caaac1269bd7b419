package storageconfigs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dms-backend/internal/providers"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts or replaces the config for a provider. The unique
// constraint on (user_id, provider) enforces one config per provider per
// tenant.
func (r *PGRepo) Upsert(ctx context.Context, cfg StorageConfig) error {
	const query = `
INSERT INTO storage_configs (
    id,
    user_id,
    provider,
    connected_by,
    last_sync,
    default_root_folder,
    credentials,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, provider) DO UPDATE SET
    connected_by = EXCLUDED.connected_by,
    last_sync = EXCLUDED.last_sync,
    default_root_folder = EXCLUDED.default_root_folder,
    credentials = EXCLUDED.credentials`

	credentials, err := json.Marshal(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		cfg.ID,
		cfg.UserID,
		string(cfg.Provider),
		cfg.ConnectedBy,
		cfg.LastSync,
		cfg.DefaultRootFolder,
		credentials,
		cfg.CreatedAt,
	)
	return err
}

const selectColumns = `id, user_id, provider, connected_by, last_sync, default_root_folder, credentials, created_at`

// GetByProvider returns the config for one provider.
func (r *PGRepo) GetByProvider(ctx context.Context, userID string, provider providers.Provider) (StorageConfig, error) {
	query := `
SELECT ` + selectColumns + `
FROM storage_configs
WHERE user_id = $1 AND provider = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, string(provider))
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StorageConfig{}, ErrNotFound
		}
		return StorageConfig{}, err
	}
	return cfg, nil
}

// ListByUser returns all connected providers for a user.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]StorageConfig, error) {
	query := `
SELECT ` + selectColumns + `
FROM storage_configs
WHERE user_id = $1
ORDER BY provider`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StorageConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// Delete removes a provider's config.
func (r *PGRepo) Delete(ctx context.Context, userID string, provider providers.Provider) error {
	const query = `DELETE FROM storage_configs WHERE user_id = $1 AND provider = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, string(provider))
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (StorageConfig, error) {
	var cfg StorageConfig
	var provider string
	var credentials []byte

	err := row.Scan(
		&cfg.ID,
		&cfg.UserID,
		&provider,
		&cfg.ConnectedBy,
		&cfg.LastSync,
		&cfg.DefaultRootFolder,
		&credentials,
		&cfg.CreatedAt,
	)
	if err != nil {
		return StorageConfig{}, err
	}

	cfg.Provider = providers.Provider(provider)
	if len(credentials) > 0 {
		if err := json.Unmarshal(credentials, &cfg.Credentials); err != nil {
			return StorageConfig{}, fmt.Errorf("decode credentials: %w", err)
		}
	}
	return cfg, nil
}
