package scans

import "dms-backend/internal/document"

// NamingPreviewRequest carries document fields and an optional template
// override for a dry-run of the naming engine.
type NamingPreviewRequest struct {
	Document document.ExtractedDocument `json:"document"`
	Template string                     `json:"template"`
}

// SuggestMappingsRequest carries document fields and an optional docType
// override for the mapping advisor.
type SuggestMappingsRequest struct {
	Document document.ExtractedDocument `json:"document"`
	DocType  string                     `json:"docType"`
}

// CreateScanRequest is the payload for starting a scan over a staged upload.
type CreateScanRequest struct {
	StorageKey string `json:"storageKey"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	Provider   string `json:"provider"`
}
