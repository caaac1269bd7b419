package bootstrap

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dms-backend/internal/scans"
	"dms-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *App {
	t.Helper()
	app, err := Build(config.Config{
		Env:             "test",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		DefaultProvider: "Local",
		DefaultCurrency: "SGD",
	})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "e2e-guest")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	decodeBody(t, rec, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true, got %v", body)
	}
}

func TestRequestsWithoutIdentityRejected(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUploadScanAndSearchFlow(t *testing.T) {
	app := buildTestApp(t)

	fixture := "Acme Corp Pte Ltd\nTAX INVOICE\nDate: 2024-03-05\nGrand Total: SGD 150.00\n"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "invoice-scan.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(fixture)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Guest-Id", "e2e-guest")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var staged struct {
		StorageKey string `json:"storageKey"`
		FileURL    string `json:"fileUrl"`
		SizeBytes  int64  `json:"sizeBytes"`
		MimeType   string `json:"mimeType"`
	}
	decodeBody(t, rec, &staged)
	if staged.StorageKey == "" {
		t.Fatal("expected a storage key from upload")
	}

	rec = doJSON(t, app, http.MethodPost, "/api/v1/scans", map[string]any{
		"storageKey": staged.StorageKey,
		"fileUrl":    staged.FileURL,
		"fileName":   "invoice-scan.txt",
		"mimeType":   staged.MimeType,
		"sizeBytes":  staged.SizeBytes,
		"provider":   "Local",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("scan status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ScanID string `json:"scanId"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &created)
	if created.ScanID == "" || created.Status != scans.StatusQueued {
		t.Fatalf("unexpected create response: %+v", created)
	}

	var scan scans.Scan
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = doJSON(t, app, http.MethodGet, "/api/v1/scans/"+created.ScanID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get scan status = %d, body = %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &scan)
		if scan.Status == scans.StatusCompleted || scan.Status == scans.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("scan did not finish in time, status = %s", scan.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if scan.Status != scans.StatusCompleted {
		t.Fatalf("scan failed: %v", scan.ErrorMessage)
	}
	if scan.SuggestedName != "20240305_Invoice_AcmeCorpPteLtd_150SGD.pdf" {
		t.Fatalf("suggested name = %q", scan.SuggestedName)
	}
	if scan.FolderPath != "/Invoice/2024/03/AcmeCorpPteLtd/" {
		t.Fatalf("folder path = %q", scan.FolderPath)
	}
	if scan.StoredFileID == "" {
		t.Fatal("expected a stored file id")
	}

	rec = doJSON(t, app, http.MethodGet, "/api/v1/files?doc_type=Invoice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list files status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var listed struct {
		Files []struct {
			FileID   string `json:"fileId"`
			FileName string `json:"fileName"`
		} `json:"files"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Files) != 1 {
		t.Fatalf("expected one stored file, got %d", len(listed.Files))
	}
	if listed.Files[0].FileName != scan.SuggestedName {
		t.Fatalf("stored file name = %q, want %q", listed.Files[0].FileName, scan.SuggestedName)
	}

	rec = doJSON(t, app, http.MethodGet, "/api/v1/files?doc_type=Receipt", nil)
	decodeBody(t, rec, &listed)
	if len(listed.Files) != 0 {
		t.Fatalf("expected no receipts, got %d", len(listed.Files))
	}
}

func TestNamingPreviewEndpoint(t *testing.T) {
	app := buildTestApp(t)

	receipt := map[string]any{
		"docType": "Receipt",
		"vendor":  "Coffee Haus",
		"date":    "2024-06-17",
		"amount":  9.5,
	}

	rec := doJSON(t, app, http.MethodPost, "/api/v1/naming/preview", map[string]any{
		"document": receipt,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		FileName   string `json:"fileName"`
		FolderPath string `json:"folderPath"`
	}
	decodeBody(t, rec, &body)
	if body.FileName != "20240617_Receipt_CoffeeHaus_9.5.pdf" {
		t.Fatalf("file name = %q", body.FileName)
	}
	if body.FolderPath != "/Receipt/2024/06/CoffeeHaus/" {
		t.Fatalf("folder path = %q", body.FolderPath)
	}

	rec = doJSON(t, app, http.MethodPost, "/api/v1/naming/preview", map[string]any{
		"document": receipt,
		"template": "{Entity}_{DocType}",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("override status = %d, body = %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &body)
	if body.FileName != "CoffeeHaus_Receipt.pdf" {
		t.Fatalf("overridden file name = %q", body.FileName)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/api/v1/suggestions", map[string]any{
		"document": map[string]any{
			"vendor": "Acme Corp",
			"amount": 150.0,
			"date":   "2024-03-05",
		},
		"docType": "Invoice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Suggestions []struct {
			TargetEntityType string `json:"targetEntityType"`
		} `json:"suggestions"`
	}
	decodeBody(t, rec, &body)
	if len(body.Suggestions) == 0 {
		t.Fatal("expected at least one suggestion for an invoice with vendor and amount")
	}
}

func TestStorageConnectFlow(t *testing.T) {
	app := buildTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/api/v1/storage/connect", map[string]any{
		"provider": "Local",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("connect status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, app, http.MethodGet, "/api/v1/storage", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Local") {
		t.Fatalf("expected Local config in %s", rec.Body.String())
	}

	rec = doJSON(t, app, http.MethodDelete, "/api/v1/storage/Local", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("disconnect status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
