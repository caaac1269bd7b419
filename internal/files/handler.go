package files

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/shared/server/middleware"
	"dms-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches file routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files", h.search)
	rg.GET("/files/:id", h.get)
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	list, err := h.Svc.Search(c.Request.Context(), userID, criteria)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search files", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"files": toResponses(list), "total": len(list)})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	file, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch file", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(file))
}

func criteriaFromQuery(c *gin.Context) (Criteria, error) {
	criteria := Criteria{
		Search:   c.Query("q"),
		DocType:  c.Query("doc_type"),
		Provider: c.Query("provider"),
	}

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		parsed, err := parseDateBound(raw, false)
		if err != nil {
			return Criteria{}, errors.New("start_date must be an ISO-8601 date")
		}
		criteria.StartDate = &parsed
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		parsed, err := parseDateBound(raw, true)
		if err != nil {
			return Criteria{}, errors.New("end_date must be an ISO-8601 date")
		}
		criteria.EndDate = &parsed
	}

	if raw := strings.TrimSpace(c.Query("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				criteria.Tags = append(criteria.Tags, trimmed)
			}
		}
	}

	return criteria, nil
}

// parseDateBound accepts RFC3339 timestamps or bare dates. A bare date used
// as an end bound covers its whole day, keeping the inclusive range
// semantics at day granularity.
func parseDateBound(raw string, end bool) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return parsed, nil
}
