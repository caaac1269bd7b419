package files

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, repo *MemoryRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth("test"))
	NewHandler(&Service{Repo: repo}).RegisterRoutes(api)
	return router
}

func searchFiles(t *testing.T, router *gin.Engine, query string) []fileResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files"+query, nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Files []fileResponse `json:"files"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Files
}

func TestSearchEndDateCoversWholeDay(t *testing.T) {
	repo := NewMemoryRepo()
	evening := StoredFile{
		ID:        "f1",
		UserID:    "guest:g1",
		FileName:  "20240310_Receipt_Dinner.pdf",
		CreatedAt: time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), evening); err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(t, repo)

	got := searchFiles(t, router, "?end_date=2024-03-10")
	if len(got) != 1 || got[0].FileID != "f1" {
		t.Fatalf("expected the same-day evening file included, got %+v", got)
	}

	got = searchFiles(t, router, "?end_date=2024-03-09")
	if len(got) != 0 {
		t.Fatalf("expected no files before the bound, got %+v", got)
	}
}

func TestSearchRejectsMalformedDateBound(t *testing.T) {
	router := newTestRouter(t, NewMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files?start_date=notadate", nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", resp.Code)
	}
}
