package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/files"
	"dms-backend/internal/scans"
	"dms-backend/internal/services/health"
	"dms-backend/internal/shared/config"
	"dms-backend/internal/shared/metrics"
	"dms-backend/internal/shared/server/middleware"
	"dms-backend/internal/shared/server/respond"
	"dms-backend/internal/storageconfigs"
	"dms-backend/internal/uploads"
)

// RouterDeps carries the handlers required to assemble the HTTP surface.
type RouterDeps struct {
	Config         config.Config
	UploadsHandler *uploads.Handler
	ScansHandler   *scans.Handler
	FilesHandler   *files.Handler
	StorageHandler *storageconfigs.Handler
}

// NewRouter builds the gin engine with the standard middleware chain and
// all API routes mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "dev" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 20},
				"POLLING": {Rate: 20, Burst: 40},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/scans/:id" {
					return "POLLING"
				}
				return "DEFAULT"
			},
		}),
	)

	healthSvc := health.NewService()

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	api.GET("/metrics", metrics.Handler())

	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}
	if deps.ScansHandler != nil {
		deps.ScansHandler.RegisterRoutes(api)
	}
	if deps.FilesHandler != nil {
		deps.FilesHandler.RegisterRoutes(api)
	}
	if deps.StorageHandler != nil {
		deps.StorageHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
