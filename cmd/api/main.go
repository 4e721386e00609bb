// Command api runs the HTTP extraction service with an embedded scan worker.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbarros/finassist/internal/api/handlers"
	"github.com/rbarros/finassist/internal/config"
	"github.com/rbarros/finassist/internal/gcstext"
	jobsmem "github.com/rbarros/finassist/internal/jobs/inmemory"
	"github.com/rbarros/finassist/internal/llm"
	"github.com/rbarros/finassist/internal/logger"
	"github.com/rbarros/finassist/internal/pipeline"
	"github.com/rbarros/finassist/internal/store"
	bqstore "github.com/rbarros/finassist/internal/store/bigquery"
	"github.com/rbarros/finassist/internal/store/inmemory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(config.DefaultLogLevel)
		fallback.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// Record store: BigQuery when a project is configured, memory otherwise.
	var records store.Store
	if cfg.PersistenceEnabled() {
		bq, err := bqstore.New(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer bq.Close()
		records = bq
		log.Info().Str("project", cfg.BQProject).Str("dataset", cfg.BQDataset).Msg("Using BigQuery store")
	} else {
		records = inmemory.New()
		log.Warn().Msg("BQ_PROJECT not set - records are kept in memory only")
	}

	// Model fallback for messages the rules cannot parse.
	var model pipeline.Extractor
	if cfg.LLMEnabled() {
		client, err := llm.NewClient(ctx, llm.Config{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Cooldown: cfg.GeminiCooldown,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		model = client
		log.Info().Str("model", cfg.GeminiModel).Msg("Model fallback enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - model fallback disabled")
	}

	// Document text fetch, needed only for scan jobs.
	var fetcher pipeline.TextFetcher
	if cfg.GCSBucket != "" {
		f, err := gcstext.NewFetcher(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer f.Close()
		fetcher = f
	} else {
		log.Warn().Msg("GCS_BUCKET not set - document scanning disabled")
	}

	engine := pipeline.New(records, model, fetcher)

	// Job queue with an embedded worker pool.
	jobStore := jobsmem.NewStore()
	queue := jobsmem.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	if fetcher != nil {
		if err := queue.Start(workerCtx, engine.JobHandler()); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scan workers")
		}
		log.Info().Msg("Scan workers started")
	}

	routerCfg := handlers.RouterConfig{
		Engine:   engine,
		Records:  records,
		JobStore: jobStore,
		Bucket:   cfg.GCSBucket,
		Log:      log,
	}
	if fetcher != nil {
		routerCfg.Publisher = queue
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server stopped")
}
