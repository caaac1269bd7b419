package storageconfigs

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/providers"
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

// RegisterRoutes attaches storage connection routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/storage/connect", h.connect)
	rg.DELETE("/storage/:provider", h.disconnect)
	rg.GET("/storage", h.list)
}

type connectRequest struct {
	Provider    string                `json:"provider"`
	Credentials providers.Credentials `json:"credentials"`
}

type configResponse struct {
	Provider          string    `json:"provider"`
	ConnectedBy       string    `json:"connectedBy,omitempty"`
	LastSync          time.Time `json:"lastSync"`
	DefaultRootFolder string    `json:"defaultRootFolder"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toResponse(cfg StorageConfig) configResponse {
	return configResponse{
		Provider:          string(cfg.Provider),
		ConnectedBy:       cfg.ConnectedBy,
		LastSync:          cfg.LastSync,
		DefaultRootFolder: cfg.DefaultRootFolder,
		CreatedAt:         cfg.CreatedAt,
	}
}

func (h *Handler) connect(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	email := middleware.UserEmailFromContext(c)

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	cfg, err := h.Svc.Connect(c.Request.Context(), userID, email, req.Provider, req.Credentials)
	if err != nil {
		var pe *providers.ProviderError
		switch {
		case errors.As(err, &pe):
			respond.Error(c, http.StatusBadGateway, "provider_error", pe.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to connect provider", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(cfg))
}

func (h *Handler) disconnect(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Disconnect(c.Request.Context(), userID, c.Param("provider"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "provider not connected", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to disconnect provider", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	configs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list providers", nil)
		return
	}

	out := make([]configResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, toResponse(cfg))
	}
	respond.JSON(c, http.StatusOK, gin.H{"providers": out})
}
