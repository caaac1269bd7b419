package files

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for stored file records.
type Service struct {
	Repo Repo
}

// Record persists a new stored file. The storage path must be the
// generated folder path; records with hand-edited paths are rejected.
func (s *Service) Record(ctx context.Context, file StoredFile) (StoredFile, error) {
	if strings.TrimSpace(file.UserID) == "" {
		return StoredFile{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if strings.TrimSpace(file.FileName) == "" {
		return StoredFile{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if !strings.HasPrefix(file.StoragePath, "/") {
		return StoredFile{}, fmt.Errorf("%w: storage path must begin with /", ErrInvalidInput)
	}

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	if err := s.Repo.Create(ctx, file); err != nil {
		return StoredFile{}, err
	}
	return file, nil
}

// Search lists a user's files and applies the criteria filter.
func (s *Service) Search(ctx context.Context, userID string, criteria Criteria) ([]StoredFile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Filter(list, criteria), nil
}

// Get fetches one stored file.
func (s *Service) Get(ctx context.Context, userID, fileID string) (StoredFile, error) {
	if strings.TrimSpace(fileID) == "" {
		return StoredFile{}, fmt.Errorf("%w: file id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, fileID)
}
