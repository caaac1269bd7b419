package scans

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/shared/server/middleware"
	"dms-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the scans service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches scan routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scans", h.createScan)
	rg.GET("/scans", h.listScans)
	rg.GET("/scans/:id", h.getScan)
	rg.POST("/scans/:id/process", h.retryScan)
	rg.POST("/naming/preview", h.previewNaming)
	rg.POST("/suggestions", h.suggestMappings)
}

func (h *Handler) createScan(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	scan, err := h.Svc.Create(ctx, Scan{
		UserID:     userID,
		StorageKey: req.StorageKey,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		Provider:   req.Provider,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start scan", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"scanId": scan.ID,
		"status": scan.Status,
	})
}

func (h *Handler) getScan(c *gin.Context) {
	scanID := c.Param("id")
	if scanID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "scan id is required", nil)
		return
	}

	scan, err := h.Svc.Get(c.Request.Context(), scanID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "scan not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch scan", nil)
		}
		return
	}
	if scan.UserID != middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusNotFound, "not_found", "scan not found", nil)
		return
	}

	respond.JSON(c, http.StatusOK, scan)
}

func (h *Handler) listScans(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	scans, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list scans", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"scans": scans})
}

func (h *Handler) retryScan(c *gin.Context) {
	scanID := c.Param("id")
	if scanID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "scan id is required", nil)
		return
	}

	existing, err := h.Svc.Get(c.Request.Context(), scanID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "scan not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch scan", nil)
		}
		return
	}
	if existing.UserID != middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusNotFound, "not_found", "scan not found", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	scan, err := h.Svc.Retry(ctx, scanID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotRetryable):
			respond.Error(c, http.StatusConflict, "not_retryable", "only failed scans can be retried", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to retry scan", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"scanId": scan.ID,
		"status": scan.Status,
	})
}

// previewNaming expands the naming template against caller-supplied fields
// without touching storage. Used by the UI to show the target name live.
// The request may override the configured template for this call only.
func (h *Handler) previewNaming(c *gin.Context) {
	var req NamingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	namer := h.Svc.Namer
	if strings.TrimSpace(req.Template) != "" {
		namer.Template = req.Template
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"fileName":   namer.FileName(req.Document),
		"folderPath": namer.FolderPath(req.Document),
	})
}

func (h *Handler) suggestMappings(c *gin.Context) {
	var req SuggestMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	docType := strings.TrimSpace(req.DocType)
	if docType == "" {
		docType = req.Document.DocType
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"suggestions": h.Svc.Advisor.Suggest(req.Document, docType),
	})
}
