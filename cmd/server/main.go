package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/infrastructure/cache"
	"github.com/agence/backoffice/internal/infrastructure/config"
	"github.com/agence/backoffice/internal/infrastructure/event"
	"github.com/agence/backoffice/internal/infrastructure/logger"
	"github.com/agence/backoffice/internal/infrastructure/metrics"
	"github.com/agence/backoffice/internal/infrastructure/persistence"
	"github.com/agence/backoffice/internal/infrastructure/report"
	"github.com/agence/backoffice/internal/infrastructure/storage"
	"github.com/agence/backoffice/internal/interfaces/http/handler"
	"github.com/agence/backoffice/internal/interfaces/http/middleware"
	"github.com/agence/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.App.Env, cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn("Failed to load .env file", zap.Error(envErr))
	}

	log.Info("Starting back-office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLoggerForLevel(log, cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)

	// Document storage and rendering
	objectStorage := newObjectStorage(ctx, cfg, log)
	renderer := report.NewPDFRenderer(cfg.Report)
	exporter := report.NewXLSXExporter()

	// Idempotency store shared by the HTTP middleware and the event handlers
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace)
		eventBus.Subscribe(event.NewIdempotentHandler(collector, idempotencyStore, cfg.Idempotency.TTL, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	quoteService := apptic.NewQuoteService(quoteRepo, ticketRepo, renderer, objectStorage, log)
	quoteService.SetEventPublisher(eventBus)
	ticketService := apptic.NewTicketService(ticketRepo, objectStorage, exporter, log)
	ticketService.SetEventPublisher(eventBus)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.EngineOptions{
		HTTP:        cfg.HTTP,
		Logger:      log,
		Health:      handler.NewHealthHandler(db, version),
		Metrics:     collector,
		MetricsPath: cfg.Metrics.Path,
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if cfg.Idempotency.Enabled {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, log))
	}
	r.Register(router.QuoteRoutes(handler.NewQuoteHandler(quoteService))).
		Register(router.TicketRoutes(handler.NewTicketHandler(ticketService)))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage returns the S3 store when a bucket is configured and an
// in-process store otherwise
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) apptic.ObjectStorage {
	if !cfg.Storage.Enabled() {
		log.Warn("Object storage not configured, documents are kept in memory")
		return storage.NewMemoryObjectStorage("")
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}

	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3Storage.EnsureBucket(bucketCtx); err != nil {
		log.Warn("Failed to ensure storage bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
	}
	return s3Storage
}
