package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/multidoc-ai/internal/config"
	"github.com/BerylCAtieno/multidoc-ai/internal/db"
	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
	"github.com/BerylCAtieno/multidoc-ai/internal/metrics"
	"github.com/BerylCAtieno/multidoc-ai/internal/pipeline"
	"github.com/BerylCAtieno/multidoc-ai/internal/repository"
	"github.com/BerylCAtieno/multidoc-ai/internal/router"
	"github.com/BerylCAtieno/multidoc-ai/internal/services"
	"github.com/BerylCAtieno/multidoc-ai/internal/storage"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	collector := metrics.NewCollector()

	// One model client, decorated per stage so logs and metrics are labelled
	model := llm.NewOpenRouterModel(llm.OpenRouterConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		Timeout: cfg.ModelTimeout,
	}, logger)

	stageModel := func(stage string) llm.Model {
		return collector.InstrumentModel(llm.WithLogging(model, logger, stage), stage)
	}

	p := pipeline.New(
		pipeline.NewExtractor(stageModel("extraction")),
		pipeline.NewClassifier(stageModel("classification")),
	)

	// Optional run history
	var repo repository.Repository
	if cfg.HistoryEnabled {
		if err := db.RunMigrations(cfg.DatabasePath); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}

		database, err := db.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		defer database.Close()

		repo = repository.NewRepository(database)
		logger.Info("Run history enabled", "path", cfg.DatabasePath)
	}

	// Optional image archive
	var store storage.Storage
	if cfg.ArchiveEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		store, err = storage.NewS3Storage(ctx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", "error", err)
		}
		logger.Info("Image archive enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketName)
	}

	classificationService := services.NewService(p, repo, store, collector, logger)

	// Setup HTTP router
	handler := router.NewRouter(classificationService, collector, cfg.MaxFileSize, logger)

	// Two model calls per request, so the write timeout covers both plus headroom
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*cfg.ModelTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.OpenRouterModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
