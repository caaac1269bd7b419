package files

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dms-backend/internal/document"
)

func TestPGRepoCreateEncodesMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	amount := 150.0
	file := StoredFile{
		ID:              "file-1",
		UserID:          "user-1",
		FileName:        "20240305_Receipt_AcmeCorp_150SGD.pdf",
		FileURL:         "staging/abc",
		StorageProvider: "Local",
		StoragePath:     "/Receipt/2024/03/AcmeCorp/",
		MimeType:        "application/pdf",
		SizeBytes:       2048,
		OCRText:         "acme corp receipt",
		Metadata: document.ExtractedDocument{
			DocType: "Receipt",
			Vendor:  "Acme Corp",
			Amount:  &amount,
		},
		Tags:      []string{"expenses"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO stored_files").
		WithArgs(
			file.ID,
			file.UserID,
			file.FileName,
			file.FileURL,
			file.StorageProvider,
			file.StoragePath,
			file.MimeType,
			file.SizeBytes,
			file.OCRText,
			sqlmock.AnyArg(), // metadata json
			sqlmock.AnyArg(), // tags json
			file.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), file); err != nil {
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

	mock.ExpectQuery("SELECT .+ FROM stored_files").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
