package scans

import (
	"time"

	"dms-backend/internal/document"
	"dms-backend/internal/mapping"
)

// Scan represents a document processing job: OCR field extraction,
// auto-naming, folder routing and the final upload to storage.
type Scan struct {
	ID            string                      `json:"id"`
	UserID        string                      `json:"userId"`
	StorageKey    string                      `json:"-"`
	FileURL       string                      `json:"fileUrl"`
	FileName      string                      `json:"fileName"`
	MimeType      string                      `json:"mimeType"`
	SizeBytes     int64                       `json:"sizeBytes"`
	Provider      string                      `json:"provider"`
	Status        string                      `json:"status"`
	StoredFileID  string                      `json:"storedFileId,omitempty"`
	SuggestedName string                      `json:"suggestedName,omitempty"`
	FolderPath    string                      `json:"folderPath,omitempty"`
	Extracted     *document.ExtractedDocument `json:"extracted,omitempty"`
	Suggestions   []mapping.Suggestion        `json:"suggestions,omitempty"`
	ErrorMessage  *string                     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	StartedAt     *time.Time                  `json:"startedAt,omitempty"`
	CompletedAt   *time.Time                  `json:"completedAt,omitempty"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}
