package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ects-quest/api/swagger"
	"github.com/noah-isme/ects-quest/internal/catalog"
	"github.com/noah-isme/ects-quest/internal/handler"
	internalmiddleware "github.com/noah-isme/ects-quest/internal/middleware"
	"github.com/noah-isme/ects-quest/internal/repository"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/service"
	"github.com/noah-isme/ects-quest/internal/solver"
	"github.com/noah-isme/ects-quest/pkg/cache"
	"github.com/noah-isme/ects-quest/pkg/config"
	"github.com/noah-isme/ects-quest/pkg/database"
	"github.com/noah-isme/ects-quest/pkg/export"
	"github.com/noah-isme/ects-quest/pkg/logger"
	corsmiddleware "github.com/noah-isme/ects-quest/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ects-quest/pkg/middleware/requestid"
	"github.com/noah-isme/ects-quest/pkg/random"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	courses := catalog.Default()
	if cfg.Catalog.Path != "" {
		courses, err = catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			logr.Fatal("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
	}
	book := rules.Default()
	slv := solver.New(courses, book, random.NewSeeded(cfg.Solver.Seed), solver.Config{
		MaxAttempts:     cfg.Solver.MaxAttempts,
		GoalWaiverRatio: cfg.Solver.GoalWaiverRatio,
	}, logr.Named("solver"))

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var snapshots service.SnapshotStore
	if cfg.Persistence.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate", zap.Error(err))
		}
		snapshots = repository.NewSnapshotRepository(db)
	}

	var snapshotCache *service.SnapshotCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			snapshotCache = service.NewSnapshotCache(cacheRepo, metricsSvc, cfg.Cache.TTL, logr)
		}
	}

	exportSvc := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter())
	gameSvc := service.NewGameService(courses, book, slv, snapshots, snapshotCache, metricsSvc, exportSvc, validate, logr, service.GameConfig{
		SessionTTL: cfg.Sessions.TTL,
		Seed:       cfg.Solver.Seed,
	})

	verificationSvc := service.NewVerificationService(courses, book, slv, metricsSvc, logr, service.VerificationConfig{
		Workers:      cfg.Verification.Workers,
		Retries:      cfg.Verification.Retries,
		DefaultSeeds: cfg.Verification.Seeds,
	})
	if cfg.Verification.Enabled {
		verificationSvc.Start(ctx)
		defer verificationSvc.Stop()
	}

	go runMaintenance(ctx, gameSvc, cfg, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/stats", metricsHandler.Stats)
	handler.NewGameHandler(gameSvc).Register(api)
	if cfg.Verification.Enabled {
		handler.NewVerificationHandler(verificationSvc).Register(api)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runMaintenance(ctx context.Context, gameSvc *service.GameService, cfg *config.Config, logr *zap.Logger) {
	ticker := time.NewTicker(cfg.Sessions.MaintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := gameSvc.Maintain(ctx, cfg.Persistence.Retention); err != nil {
				logr.Warn("maintenance failed", zap.Error(err))
			}
		}
	}
}
