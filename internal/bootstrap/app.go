package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"dms-backend/internal/files"
	"dms-backend/internal/mapping"
	"dms-backend/internal/naming"
	"dms-backend/internal/providers"
	"dms-backend/internal/queue"
	"dms-backend/internal/scans"
	"dms-backend/internal/shared/config"
	"dms-backend/internal/shared/server"
	"dms-backend/internal/shared/storage/db"
	"dms-backend/internal/shared/storage/object"
	localstore "dms-backend/internal/shared/storage/object/local"
	s3store "dms-backend/internal/shared/storage/object/s3"
	"dms-backend/internal/storageconfigs"
	"dms-backend/internal/uploads"
)

// App holds shared dependencies for the API server and the queue worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	FilesRepo   files.Repo
	ScansRepo   scans.Repo
	StorageRepo storageconfigs.Repo

	FilesService   *files.Service
	ScansService   *scans.Service
	StorageService *storageconfigs.Service
	ScanProcessor  ScanProcessor

	UploadsHandler *uploads.Handler
	ScansHandler   *scans.Handler
	FilesHandler   *files.Handler
	StorageHandler *storageconfigs.Handler
}

// ScanProcessor allows callers to override scan processing for tests.
type ScanProcessor interface {
	ProcessScan(ctx context.Context, scanID string) error
}

// Build prepares shared dependencies and assembles the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		UploadsHandler: app.UploadsHandler,
		ScansHandler:   app.ScansHandler,
		FilesHandler:   app.FilesHandler,
		StorageHandler: app.StorageHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("DMS_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		filesRepo   files.Repo
		scansRepo   scans.Repo
		storageRepo storageconfigs.Repo
	)

	if app.DB != nil {
		filesRepo = &files.PGRepo{DB: app.DB}
		scansRepo = &scans.PGRepo{DB: app.DB}
		storageRepo = &storageconfigs.PGRepo{DB: app.DB}
	} else {
		filesRepo = files.NewMemoryRepo()
		scansRepo = scans.NewMemoryRepo()
		storageRepo = storageconfigs.NewMemoryRepo()
	}

	factory := &providers.Factory{
		Opts: providers.Options{
			GoogleClientID:      app.Config.GoogleClientID,
			GoogleClientSecret:  app.Config.GoogleClientSecret,
			DropboxClientID:     app.Config.DropboxClientID,
			DropboxClientSecret: app.Config.DropboxClientSecret,
			MSClientID:          app.Config.MSClientID,
			MSClientSecret:      app.Config.MSClientSecret,
		},
	}

	filesSvc := &files.Service{Repo: filesRepo}
	storageSvc := &storageconfigs.Service{Repo: storageRepo, Factory: factory}
	scansSvc := &scans.Service{
		Repo:    scansRepo,
		Files:   filesSvc,
		Configs: storageSvc,
		Store:   app.Store,
		Namer: naming.Namer{
			Template:  app.Config.NamingTemplate,
			Extension: app.Config.DocumentExtension,
		},
		Advisor: mapping.Advisor{Currency: app.Config.DefaultCurrency},
		Queue:   app.Queue,
	}

	var stagingDir string
	if app.Config.ObjectStoreType != "s3" {
		stagingDir = app.Config.LocalStoreDir
	}

	app.FilesRepo = filesRepo
	app.ScansRepo = scansRepo
	app.StorageRepo = storageRepo
	app.FilesService = filesSvc
	app.ScansService = scansSvc
	app.StorageService = storageSvc
	app.ScanProcessor = scanProcessor{svc: scansSvc}
	app.UploadsHandler = uploads.NewHandler(app.Store, stagingDir)
	app.ScansHandler = scans.NewHandler(scansSvc)
	app.FilesHandler = files.NewHandler(filesSvc)
	app.StorageHandler = storageconfigs.NewHandler(storageSvc)

	if app.ScansHandler == nil || app.FilesHandler == nil || app.StorageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}

type scanProcessor struct {
	svc *scans.Service
}

func (p scanProcessor) ProcessScan(ctx context.Context, scanID string) error {
	return p.svc.Process(ctx, scanID)
}
