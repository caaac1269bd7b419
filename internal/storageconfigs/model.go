package storageconfigs

import (
	"time"

	"dms-backend/internal/providers"
)

// StorageConfig records a connected storage provider for a tenant. There is
// at most one per provider per user; it is created on a successful connect
// and deleted on disconnect.
type StorageConfig struct {
	ID                string
	UserID            string
	Provider          providers.Provider
	ConnectedBy       string
	LastSync          time.Time
	DefaultRootFolder string
	Credentials       providers.Credentials
	CreatedAt         time.Time
}
