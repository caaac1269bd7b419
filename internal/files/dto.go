package files

import (
	"time"

	"dms-backend/internal/document"
)

type fileResponse struct {
	FileID          string                     `json:"fileId"`
	FileName        string                     `json:"fileName"`
	FileURL         string                     `json:"fileUrl"`
	StorageProvider string                     `json:"storageProvider"`
	StoragePath     string                     `json:"storagePath"`
	MimeType        string                     `json:"mimeType"`
	SizeBytes       int64                      `json:"sizeBytes"`
	OCRText         string                     `json:"ocrText,omitempty"`
	Metadata        document.ExtractedDocument `json:"metadata"`
	Tags            []string                   `json:"tags,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

func toResponse(f StoredFile) fileResponse {
	return fileResponse{
		FileID:          f.ID,
		FileName:        f.FileName,
		FileURL:         f.FileURL,
		StorageProvider: f.StorageProvider,
		StoragePath:     f.StoragePath,
		MimeType:        f.MimeType,
		SizeBytes:       f.SizeBytes,
		OCRText:         f.OCRText,
		Metadata:        f.Metadata,
		Tags:            f.Tags,
		CreatedAt:       f.CreatedAt,
	}
}

func toResponses(list []StoredFile) []fileResponse {
	out := make([]fileResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toResponse(f))
	}
	return out
}
