package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/adapters/primary/http/handlers"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/primary/http/middleware"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/archive"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/fetch"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/kubebuild"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/patcher"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/pkgfs"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/postgres"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/sourcetree"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/toolchain"
	"github.com/fxdian/ungoogled-chromium/internal/config"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Repositories)
	buildRepo := postgres.NewBuildRepository(pool)
	patchSetRepo := postgres.NewPatchSetRepository(pool)

	// Secondary Adapters (Output Ports - Pipeline collaborators)
	fetcher := fetch.NewClient(&cfg.Source)
	extractor := archive.NewExtractor()
	applier := patcher.NewApplier()
	normalizer := sourcetree.NewNormalizer(cfg.Sandbox.ResourcesDir, cfg.Toolchain.Python)
	tools := toolchain.New(&cfg.Toolchain, cfg.Sandbox.ResourcesDir)
	packager := pkgfs.NewInstaller(&cfg.Package, cfg.Sandbox.ResourcesDir)

	// Remote Builder (Optional - based on config)
	var remote output.RemoteBuilder
	if cfg.Kubernetes.Enabled {
		client, err := kubebuild.NewRemoteBuilder(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("remote builder init failed (continuing with local builds): %v", err)
		} else {
			remote = client
			log.Info("remote builder initialized")
		}
	} else {
		log.Info("remote builder disabled")
	}

	// Core Services (Application Layer)
	buildSvc := services.NewBuildService(buildRepo, patchSetRepo)
	patchSetSvc := services.NewPatchSetService(patchSetRepo, buildRepo)
	pipelineSvc := services.NewPipelineService(
		buildRepo, patchSetRepo,
		fetcher, extractor, applier, normalizer, tools, packager,
		cfg.Sandbox,
	)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(buildSvc, patchSetSvc, pipelineSvc, remote)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/build-service")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
