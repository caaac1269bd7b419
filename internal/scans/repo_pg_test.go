package scans

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dms-backend/internal/document"
	"dms-backend/internal/mapping"
)

func TestPGRepoCreateInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	scan := Scan{
		ID:         "scan-1",
		UserID:     "user-1",
		StorageKey: "user-1/inv.pdf",
		FileURL:    "file:///tmp/inv.pdf",
		FileName:   "inv.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  2048,
		Provider:   "Local",
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO scans").
		WithArgs(
			scan.ID,
			scan.UserID,
			scan.StorageKey,
			scan.FileURL,
			scan.FileName,
			scan.MimeType,
			scan.SizeBytes,
			scan.Provider,
			scan.Status,
			scan.CreatedAt,
			scan.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT .+ FROM scans").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE scans").
		WithArgs("missing", StatusFailed, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.UpdateStatus(context.Background(), "missing", StatusFailed, nil, nil, nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateOutcomeEncodesResults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	amount := 150.0
	completedAt := time.Now().UTC()
	outcome := Outcome{
		StoredFileID:  "file-1",
		SuggestedName: "20240305_Invoice_AcmeCorp_150SGD.pdf",
		FolderPath:    "/Invoice/2024/03/AcmeCorp/",
		Extracted: &document.ExtractedDocument{
			DocType: "Invoice",
			Vendor:  "Acme Corp",
			Amount:  &amount,
		},
		Suggestions: []mapping.Suggestion{
			{TargetEntityType: "Purchase Invoice", Action: mapping.ActionCreateDraft},
		},
		CompletedAt: completedAt,
	}

	mock.ExpectExec("UPDATE scans").
		WithArgs(
			"scan-1",
			StatusCompleted,
			outcome.StoredFileID,
			outcome.SuggestedName,
			outcome.FolderPath,
			sqlmock.AnyArg(), // extracted json
			sqlmock.AnyArg(), // suggestions json
			outcome.CompletedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.UpdateOutcome(context.Background(), "scan-1", outcome); err != nil {
		t.Fatalf("UpdateOutcome: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
