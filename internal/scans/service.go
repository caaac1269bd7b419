package scans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"dms-backend/internal/extract"
	"dms-backend/internal/files"
	"dms-backend/internal/mapping"
	"dms-backend/internal/naming"
	"dms-backend/internal/providers"
	"dms-backend/internal/queue"
	"dms-backend/internal/shared/metrics"
	"dms-backend/internal/shared/storage/object"
	"dms-backend/internal/shared/telemetry"
	"dms-backend/internal/storageconfigs"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Service contains business logic for scans.
type Service struct {
	Repo    Repo
	Files   *files.Service
	Configs *storageconfigs.Service
	Store   object.ObjectStore
	Namer   naming.Namer
	Advisor mapping.Advisor
	Queue   queue.Client
}

// Create enqueues a new scan. When a queue client is configured the scan is
// handed to the worker; otherwise processing starts in the background.
func (s *Service) Create(ctx context.Context, scan Scan) (Scan, error) {
	if strings.TrimSpace(scan.UserID) == "" {
		return Scan{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if strings.TrimSpace(scan.StorageKey) == "" && strings.TrimSpace(scan.FileURL) == "" {
		return Scan{}, fmt.Errorf("%w: storage key or file url required", ErrInvalidInput)
	}
	if strings.TrimSpace(scan.FileName) == "" {
		return Scan{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	scan.ID = uuid.NewString()
	scan.Status = StatusQueued
	scan.CreatedAt = now
	scan.UpdatedAt = now

	if err := s.Repo.Create(ctx, scan); err != nil {
		return Scan{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			ScanID:     scan.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: now.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.failScan(ctx, scan.ID, scan.UserID, fmt.Errorf("enqueue: %w", err), nil)
			return Scan{}, err
		}
		return scan, nil
	}

	go s.processAsync(backgroundWithRequestID(ctx), scan.ID)
	return scan, nil
}

// Get returns a scan by ID.
func (s *Service) Get(ctx context.Context, scanID string) (Scan, error) {
	if scanID == "" {
		return Scan{}, errors.New("scanID is required")
	}
	return s.Repo.GetByID(ctx, scanID)
}

// List returns scans for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Scan, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Retry requeues a failed scan for another processing attempt.
func (s *Service) Retry(ctx context.Context, scanID string) (Scan, error) {
	scan, err := s.Repo.GetByID(ctx, scanID)
	if err != nil {
		return Scan{}, err
	}
	if scan.Status != StatusFailed {
		return Scan{}, ErrNotRetryable
	}
	if err := s.Repo.UpdateStatus(ctx, scanID, StatusQueued, nil, nil, nil); err != nil {
		return Scan{}, err
	}
	scan.Status = StatusQueued
	go s.processAsync(backgroundWithRequestID(ctx), scanID)
	return scan, nil
}

func (s *Service) processAsync(ctx context.Context, scanID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failScan(ctx, scanID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, scanID)
}

// Process runs the full pipeline for a queued scan: extract fields, build
// the name and folder path, advise entity mappings, upload to the user's
// provider and record the stored file. Failures mark the scan failed; the
// file record is only written after the upload succeeds.
func (s *Service) Process(ctx context.Context, scanID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, scanID, StatusProcessing, nil, &startedAt, nil); err != nil {
		err = fmt.Errorf("set processing failed: %w", err)
		s.failScan(ctx, scanID, "", err, &startedAt)
		return err
	}

	scan, err := s.Repo.GetByID(ctx, scanID)
	if err != nil {
		err = fmt.Errorf("scan lookup: %w", err)
		s.failScan(ctx, scanID, "", err, &startedAt)
		return err
	}
	metrics.IncScanStarted()
	telemetry.Info("scan.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           scan.UserID,
		"scan_id":           scan.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Store == nil {
		err := errors.New("missing staging store")
		s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
		return err
	}

	if scan.StorageKey == "" {
		if err := s.stageRemote(ctx, &scan); err != nil {
			err = fmt.Errorf("remote source: %w", err)
			s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
			return err
		}
	}

	data, err := loadBytes(ctx, s.Store, scan.StorageKey)
	if err != nil {
		err = fmt.Errorf("staged file %s: %w", scan.StorageKey, err)
		s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
		return err
	}

	doc := extract.Analyze(ctx, data, scan.MimeType, scan.FileName)
	name := s.Namer.FileName(doc)
	folder := s.Namer.FolderPath(doc)
	suggestions := s.Advisor.Suggest(doc, doc.DocType)

	adapter := s.Configs.AdapterFor(ctx, scan.UserID, scan.Provider)
	result, err := adapter.UploadFile(ctx, providers.File{
		Name:      name,
		URL:       scan.FileURL,
		MimeType:  scan.MimeType,
		SizeBytes: scan.SizeBytes,
	}, strings.TrimSuffix(folder, "/"))
	if err != nil {
		err = fmt.Errorf("upload to %s: %w", adapter.Provider(), err)
		s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
		return err
	}

	stored, err := s.Files.Record(ctx, files.StoredFile{
		UserID:          scan.UserID,
		FileName:        name,
		FileURL:         result.URL,
		StorageProvider: string(adapter.Provider()),
		StoragePath:     folder,
		MimeType:        scan.MimeType,
		SizeBytes:       scan.SizeBytes,
		OCRText:         doc.OCRText,
		Metadata:        doc,
		Tags:            doc.Keywords,
	})
	if err != nil {
		err = fmt.Errorf("record stored file: %w", err)
		s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateOutcome(ctx, scanID, Outcome{
		StoredFileID:  stored.ID,
		SuggestedName: name,
		FolderPath:    folder,
		Extracted:     &doc,
		Suggestions:   suggestions,
		CompletedAt:   completedAt,
	}); err != nil {
		err = fmt.Errorf("set scan outcome failed: %w", err)
		s.failScan(ctx, scanID, scan.UserID, err, &startedAt)
		return err
	}
	metrics.IncScanCompleted()
	metrics.ObserveScanDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("scan.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           scan.UserID,
		"scan_id":           scan.ID,
		"stored_file_id":    stored.ID,
		"provider":          string(adapter.Provider()),
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// maxRemoteBytes caps downloads of externally-hosted sources, matching the
// staging upload limit.
const maxRemoteBytes = 20 << 20

// stageRemote fetches the scan's file URL and stages the content under a
// deterministic key so the rest of the pipeline reads from the object store.
// Used for scans created from a presigned or external upload that never
// passed through the staging endpoint.
func (s *Service) stageRemote(ctx context.Context, scan *Scan) error {
	src := strings.TrimSpace(scan.FileURL)
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return fmt.Errorf("unsupported file url scheme")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	key := "remote/" + scan.ID
	size, err := s.Store.SaveWithKey(ctx, key, resp.Header.Get("Content-Type"), io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	scan.StorageKey = key
	if scan.SizeBytes == 0 {
		scan.SizeBytes = size
	}
	if scan.MimeType == "" {
		scan.MimeType = resp.Header.Get("Content-Type")
	}
	return nil
}

func (s *Service) failScan(ctx context.Context, scanID, userID string, err error, startedAt *time.Time) {
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatus(context.Background(), scanID, StatusFailed, &msg, nil, &completedAt); updateErr != nil {
		fmt.Printf("failScan: update failed id=%s err=%v orig=%v\n", scanID, updateErr, err)
	}
	metrics.IncScanFailed()
	if startedAt != nil {
		metrics.ObserveScanDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("scan.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"scan_id":           scanID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error":             msg,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func loadBytes(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}
