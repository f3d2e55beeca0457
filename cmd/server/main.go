package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gstboard/backend/internal/application/ingest"
	"github.com/gstboard/backend/internal/application/report"
	"github.com/gstboard/backend/internal/domain/shared"
	"github.com/gstboard/backend/internal/infrastructure/cache"
	"github.com/gstboard/backend/internal/infrastructure/config"
	"github.com/gstboard/backend/internal/infrastructure/logger"
	"github.com/gstboard/backend/internal/infrastructure/marketplace"
	"github.com/gstboard/backend/internal/infrastructure/persistence"
	"github.com/gstboard/backend/internal/infrastructure/storage"
	"github.com/gstboard/backend/internal/interfaces/http/handler"
	"github.com/gstboard/backend/internal/interfaces/http/middleware"
	"github.com/gstboard/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting GST Board backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	historyRepo := persistence.NewGormUploadHistoryRepository(db.DB)
	snapshotRepo := persistence.NewGormMetricsSnapshotRepository(db.DB)

	uploadOpts := []ingest.UploadServiceOption{
		ingest.WithLogger(log),
		ingest.WithLimits(cfg.Upload.MaxFileSize, cfg.Upload.MaxRows),
	}

	// Redis keeps the fast duplicate-detection path; the database stays the
	// source of truth, so a missing Redis only degrades to slower checks.
	var dedup shared.DedupStore
	if cfg.Upload.DedupEnabled {
		redisStore, err := cache.NewRedisDedupStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory duplicate detection", zap.Error(err))
			dedup = cache.NewInMemoryDedupStore()
		} else {
			log.Info("Redis duplicate detection enabled")
			dedup = redisStore
		}
		defer func() {
			if err := dedup.Close(); err != nil {
				log.Error("Error closing dedup store", zap.Error(err))
			}
		}()
		uploadOpts = append(uploadOpts, ingest.WithDedupStore(dedup, cfg.Upload.DedupTTL))
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := archive.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatal("Failed to ensure archive bucket", zap.Error(err))
		}
		cancel()
		log.Info("Raw file archival enabled", zap.String("bucket", archive.GetBucket()))
		uploadOpts = append(uploadOpts, ingest.WithArchiver(archive))
	}

	registry := marketplace.NewDefaultRegistry()
	uploadService := ingest.NewUploadService(registry, historyRepo, snapshotRepo, uploadOpts...)
	metricsService := report.NewMetricsService(historyRepo, snapshotRepo, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Multipart overhead on top of the CSV itself
	engine.Use(middleware.BodyLimit(cfg.Upload.MaxFileSize * 2))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewUploadHandler(uploadService, cfg.Upload.MaxFileSize))
	r.Register(handler.NewMetricsHandler(metricsService))
	r.Register(handler.NewSystemHandler(db))
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()
	log.Info("Server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
