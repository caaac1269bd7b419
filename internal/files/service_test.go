package files

import (
	"context"
	"errors"
	"testing"

	"dms-backend/internal/document"
)

func TestServiceRecordRejectsBadStoragePath(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	_, err := svc.Record(context.Background(), StoredFile{
		UserID:      "user-1",
		FileName:    "a.pdf",
		StoragePath: "Receipt/2024/03/",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceRecordAssignsIDAndTimestamp(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	created, err := svc.Record(context.Background(), StoredFile{
		UserID:      "user-1",
		FileName:    "a.pdf",
		StoragePath: "/Receipt/2024/03/Acme/",
		Metadata:    document.ExtractedDocument{DocType: "Receipt"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and timestamp, got %+v", created)
	}

	fetched, err := svc.Get(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Metadata.DocType != "Receipt" {
		t.Fatalf("expected metadata round-trip, got %+v", fetched.Metadata)
	}
}

func TestServiceSearchScopedToUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	for _, userID := range []string{"user-1", "user-2"} {
		if _, err := svc.Record(context.Background(), StoredFile{
			UserID:      userID,
			FileName:    "doc.pdf",
			StoragePath: "/General/2024/01/Unsorted/",
		}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	list, err := svc.Search(context.Background(), "user-1", Criteria{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 1 || list[0].UserID != "user-1" {
		t.Fatalf("expected one file for user-1, got %+v", list)
	}
}
