package scans

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"dms-backend/internal/files"
	"dms-backend/internal/providers"
	"dms-backend/internal/queue"
	"dms-backend/internal/storageconfigs"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *memStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.objects[storageKey] = data
	s.mu.Unlock()
	return int64(len(data)), nil
}

func (s *memStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[storageKey]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type captureQueue struct {
	mu   sync.Mutex
	sent []queue.Message
}

func (q *captureQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	q.sent = append(q.sent, msg)
	q.mu.Unlock()
	return nil
}

func newTestService(store *memStore) (*Service, *files.MemoryRepo) {
	filesRepo := files.NewMemoryRepo()
	return &Service{
		Repo:  NewMemoryRepo(),
		Files: &files.Service{Repo: filesRepo},
		Configs: &storageconfigs.Service{
			Repo:    storageconfigs.NewMemoryRepo(),
			Factory: &providers.Factory{},
		},
		Store: store,
	}, filesRepo
}

const invoiceFixture = `Acme Corp Pte Ltd
TAX INVOICE
Date: 2024-03-05
Grand Total: SGD 150.00
`

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	svc.Queue = &captureQueue{}

	_, err := svc.Create(context.Background(), Scan{StorageKey: "k", FileName: "a.pdf"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}

	_, err = svc.Create(context.Background(), Scan{UserID: "u1", FileName: "a.pdf"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing source, got %v", err)
	}
}

func TestCreateAcceptsFileURLWithoutStorageKey(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	q := &captureQueue{}
	svc.Queue = q

	scan, err := svc.Create(context.Background(), Scan{
		UserID:   "u1",
		FileURL:  "https://uploads.example.com/scans/u1/inv.pdf",
		FileName: "inv.pdf",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if scan.Status != StatusQueued {
		t.Fatalf("status = %q, want %q", scan.Status, StatusQueued)
	}
}

func TestCreateEnqueuesWhenQueueConfigured(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	q := &captureQueue{}
	svc.Queue = q

	scan, err := svc.Create(context.Background(), Scan{
		UserID:     "u1",
		StorageKey: "u1/inv.pdf",
		FileName:   "inv.pdf",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if scan.Status != StatusQueued {
		t.Fatalf("status = %q, want %q", scan.Status, StatusQueued)
	}
	if len(q.sent) != 1 || q.sent[0].ScanID != scan.ID {
		t.Fatalf("expected one queued message for scan %s, got %+v", scan.ID, q.sent)
	}
}

func TestProcessCompletesAndRecordsStoredFile(t *testing.T) {
	store := newMemStore()
	store.objects["u1/scan001.pdf"] = []byte(invoiceFixture)

	svc, _ := newTestService(store)
	scan := Scan{
		ID:         "scan-1",
		UserID:     "u1",
		StorageKey: "u1/scan001.pdf",
		FileURL:    "file:///tmp/scan001.pdf",
		FileName:   "scan001.pdf",
		MimeType:   "text/plain",
		SizeBytes:  int64(len(invoiceFixture)),
		Status:     StatusQueued,
	}
	if err := svc.Repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	if err := svc.Process(context.Background(), scan.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := svc.Repo.GetByID(context.Background(), scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q (error=%v)", got.Status, StatusCompleted, got.ErrorMessage)
	}
	if got.StoredFileID == "" {
		t.Fatal("expected stored file id on completed scan")
	}
	nameRe := regexp.MustCompile(`^\d{8}_Invoice_[^_]+.*\.pdf$`)
	if !nameRe.MatchString(got.SuggestedName) {
		t.Fatalf("suggested name %q does not match %v", got.SuggestedName, nameRe)
	}
	folderRe := regexp.MustCompile(`^/Invoice/2024/03/[^/]+/$`)
	if !folderRe.MatchString(got.FolderPath) {
		t.Fatalf("folder path %q does not match %v", got.FolderPath, folderRe)
	}
	if len(got.Suggestions) == 0 {
		t.Fatal("expected a purchase invoice suggestion for an invoice with an amount")
	}

	stored, err := svc.Files.Get(context.Background(), "u1", got.StoredFileID)
	if err != nil {
		t.Fatalf("get stored file: %v", err)
	}
	if stored.FileName != got.SuggestedName {
		t.Fatalf("stored file name = %q, want %q", stored.FileName, got.SuggestedName)
	}
	if stored.StoragePath != got.FolderPath {
		t.Fatalf("stored path = %q, want %q", stored.StoragePath, got.FolderPath)
	}
	if stored.StorageProvider != string(providers.ProviderLocal) {
		t.Fatalf("provider = %q, want %q", stored.StorageProvider, providers.ProviderLocal)
	}
}

func TestProcessStagesRemoteFileURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(invoiceFixture))
	}))
	defer srv.Close()

	store := newMemStore()
	svc, _ := newTestService(store)
	scan := Scan{
		ID:       "scan-remote",
		UserID:   "u1",
		FileURL:  srv.URL + "/inv.txt",
		FileName: "inv.txt",
		Status:   StatusQueued,
	}
	if err := svc.Repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	if err := svc.Process(context.Background(), scan.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	store.mu.Lock()
	staged, ok := store.objects["remote/scan-remote"]
	store.mu.Unlock()
	if !ok {
		t.Fatal("expected the remote source staged under remote/scan-remote")
	}
	if string(staged) != invoiceFixture {
		t.Fatalf("staged content = %q, want the fetched body", staged)
	}

	got, err := svc.Repo.GetByID(context.Background(), scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q (error=%v)", got.Status, StatusCompleted, got.ErrorMessage)
	}
	if got.StoredFileID == "" {
		t.Fatal("expected stored file id on completed scan")
	}
}

func TestProcessFailsWhenRemoteFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc, _ := newTestService(newMemStore())
	scan := Scan{
		ID:       "scan-remote-404",
		UserID:   "u1",
		FileURL:  srv.URL + "/gone.txt",
		FileName: "gone.txt",
		Status:   StatusQueued,
	}
	if err := svc.Repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	if err := svc.Process(context.Background(), scan.ID); err == nil {
		t.Fatal("expected process to fail when the remote source returns 404")
	}

	got, err := svc.Repo.GetByID(context.Background(), scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", got.Status, StatusFailed)
	}
}

func TestProcessFailsWhenStagedFileMissing(t *testing.T) {
	svc, filesRepo := newTestService(newMemStore())
	scan := Scan{
		ID:         "scan-2",
		UserID:     "u1",
		StorageKey: "u1/missing.pdf",
		FileName:   "missing.pdf",
		Status:     StatusQueued,
	}
	if err := svc.Repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	if err := svc.Process(context.Background(), scan.ID); err == nil {
		t.Fatal("expected process to fail for a missing staged file")
	}

	got, err := svc.Repo.GetByID(context.Background(), scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", got.Status, StatusFailed)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage == "" {
		t.Fatal("expected an error message on the failed scan")
	}

	stored, err := filesRepo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list stored files: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no stored files after a failed scan, got %d", len(stored))
	}
}

func TestRetryOnlyFailedScans(t *testing.T) {
	store := newMemStore()
	store.objects["u1/scan003.pdf"] = []byte(invoiceFixture)
	svc, _ := newTestService(store)

	scan := Scan{
		ID:         "scan-3",
		UserID:     "u1",
		StorageKey: "u1/scan003.pdf",
		FileName:   "scan003.pdf",
		Status:     StatusQueued,
	}
	if err := svc.Repo.Create(context.Background(), scan); err != nil {
		t.Fatalf("seed scan: %v", err)
	}
	if err := svc.Process(context.Background(), scan.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, err := svc.Retry(context.Background(), scan.ID); !errors.Is(err, ErrNotRetryable) {
		t.Fatalf("expected ErrNotRetryable for a completed scan, got %v", err)
	}
}
