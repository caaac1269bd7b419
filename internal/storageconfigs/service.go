package storageconfigs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dms-backend/internal/providers"
	"dms-backend/internal/shared/telemetry"
)

// Service manages provider connections.
type Service struct {
	Repo    Repo
	Factory *providers.Factory
}

// Connect runs the provider handshake and records the connection. The
// handshake is idempotent; reconnecting replaces the stored config.
func (s *Service) Connect(ctx context.Context, userID, email, providerName string, creds providers.Credentials) (StorageConfig, error) {
	if strings.TrimSpace(userID) == "" {
		return StorageConfig{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	adapter := s.Factory.New(providerName, creds)
	if adapter.Provider() == providers.ProviderLocal && !isLocalName(providerName) {
		// Safe-default resolution; log so a typoed provider name is visible.
		telemetry.Info("storage.connect.unknown_provider", map[string]any{
			"requested": providerName,
			"user_id":   userID,
		})
	}

	result, err := adapter.Connect(ctx)
	if err != nil {
		return StorageConfig{}, err
	}

	connectedBy := result.Email
	if connectedBy == "" {
		connectedBy = email
	}

	cfg := StorageConfig{
		ID:                uuid.NewString(),
		UserID:            userID,
		Provider:          adapter.Provider(),
		ConnectedBy:       connectedBy,
		LastSync:          time.Now().UTC(),
		DefaultRootFolder: adapter.Root(),
		Credentials:       creds,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.Repo.Upsert(ctx, cfg); err != nil {
		return StorageConfig{}, err
	}
	return cfg, nil
}

// Disconnect deletes the stored config for a provider.
func (s *Service) Disconnect(ctx context.Context, userID, providerName string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	adapter := s.Factory.New(providerName, providers.Credentials{})
	return s.Repo.Delete(ctx, userID, adapter.Provider())
}

// List returns the user's connected providers.
func (s *Service) List(ctx context.Context, userID string) ([]StorageConfig, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID)
}

// AdapterFor builds the adapter for a user's connected provider, falling
// back to unconfigured credentials when no config exists.
func (s *Service) AdapterFor(ctx context.Context, userID, providerName string) providers.Adapter {
	adapter := s.Factory.New(providerName, providers.Credentials{})
	cfg, err := s.Repo.GetByProvider(ctx, userID, adapter.Provider())
	if err != nil {
		return adapter
	}
	return s.Factory.New(providerName, cfg.Credentials)
}

func isLocalName(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return true
	default:
		return false
	}
}
