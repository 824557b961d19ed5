package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/apiwada-admin-api/api/swagger"
	"github.com/noah-isme/apiwada-admin-api/internal/handler"
	"github.com/noah-isme/apiwada-admin-api/internal/middleware"
	"github.com/noah-isme/apiwada-admin-api/internal/repository"
	"github.com/noah-isme/apiwada-admin-api/internal/service"
	"github.com/noah-isme/apiwada-admin-api/pkg/cache"
	"github.com/noah-isme/apiwada-admin-api/pkg/config"
	"github.com/noah-isme/apiwada-admin-api/pkg/database"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
	"github.com/noah-isme/apiwada-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/apiwada-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/apiwada-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/apiwada-admin-api/pkg/storage"
)

// @title Apiwada Admin API
// @version 1.0.0
// @description Student records, site settings and course catalog for the Apiwada tutoring console
// @BasePath /
// @schemes http

type backend struct {
	store docstore.Store
	redis *redis.Client
	ready handler.ReadinessCheck
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer be.store.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	store := docstore.Instrument(be.store, metrics)
	validate := validator.New()

	var (
		sessions  repository.SessionRepository
		cacheRepo service.CacheRepository
	)
	if be.redis != nil {
		sessions = repository.NewRedisSessionRepository(be.redis, cfg.Store.KeyPrefix, cfg.Session.TTL)
		cacheRepo = repository.NewCacheRepository(be.redis, logr)
	} else {
		sessions = repository.NewMemorySessionRepository(cfg.Session.TTL)
		cacheRepo = repository.NewMemoryCacheRepository(cfg.Settings.CacheTTL)
	}

	allocator := repository.NewIndexAllocator(store, cfg.Allocator, metrics, logr)
	users := repository.NewUserRepository(store, allocator, sessions)
	audit := repository.NewAuditRepository(store)

	authSvc := service.NewAuthService(users, sessions, audit, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if err := authSvc.EnsureAdmin(ctx, service.AdminBootstrap{
		Contact:      cfg.Admin.Contact,
		Password:     cfg.Admin.Password,
		Name:         cfg.Admin.Name,
		Capabilities: cfg.Admin.Capabilities,
	}); err != nil {
		logr.Fatal("failed to ensure admin account", zap.Error(err))
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, service.CacheConfig{
		Enabled:   cfg.Settings.CacheEnabled,
		TTL:       cfg.Settings.CacheTTL,
		Namespace: cfg.Store.KeyPrefix + ":cache",
	}, logr)
	studentSvc := service.NewStudentService(users, audit, validate, logr)
	settingsSvc := service.NewSettingsService(repository.NewSettingsRepository(store), cacheSvc, audit, logr)
	assetSvc := service.NewAssetService(settingsSvc, service.AssetConfig{
		MaxBytes:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
	}, logr)
	courseSvc := service.NewCourseService(repository.NewCourseRepository(store), audit, validate, logr)
	exportSvc := service.NewExportService(users, files, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), audit, service.ExportConfig{
		APIPrefix:    cfg.APIPrefix,
		RetentionTTL: cfg.Exports.RetentionTTL,
	}, logr)

	metricsHandler := handler.NewMetricsHandler(metrics, be.ready)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router := &handler.Router{
		Auth:     handler.NewAuthHandler(authSvc, studentSvc),
		Students: handler.NewStudentHandler(studentSvc),
		Settings: handler.NewSettingsHandler(settingsSvc, assetSvc, cfg.Uploads.MaxFileSizeBytes),
		Courses:  handler.NewCourseHandler(courseSvc),
		Exports:  handler.NewExportHandler(exportSvc),
		Metrics:  metricsHandler,
		Tokens:   authSvc,
	}
	router.Register(r, cfg.APIPrefix)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory, "":
		return &backend{store: docstore.NewMemoryStore()}, nil
	case config.StoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			store: docstore.NewRedisStore(client, cfg.Store.KeyPrefix),
			redis: client,
			ready: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pg := docstore.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &backend{store: pg, ready: db.PingContext}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
