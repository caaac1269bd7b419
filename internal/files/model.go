package files

import (
	"time"

	"dms-backend/internal/document"
)

// StoredFile is a persisted record of a file placed into a storage
// provider. Records are immutable once created; corrections produce new
// versions upstream.
type StoredFile struct {
	ID              string
	UserID          string
	FileName        string
	FileURL         string
	StorageProvider string

	// StoragePath always begins with "/" and is generated by the folder
	// path builder, never hand-edited.
	StoragePath string

	MimeType  string
	SizeBytes int64
	OCRText   string
	Metadata  document.ExtractedDocument
	Tags      []string
	CreatedAt time.Time
}
