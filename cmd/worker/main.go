package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finlens/statement-analyzer/internal/boltstore"
	"github.com/finlens/statement-analyzer/internal/gcsfetch"
	"github.com/finlens/statement-analyzer/internal/jobs/inmemory"
	"github.com/finlens/statement-analyzer/internal/logger"
	"github.com/finlens/statement-analyzer/internal/narrative"
	"github.com/finlens/statement-analyzer/internal/pipeline"
	"github.com/finlens/statement-analyzer/internal/warehouse"
)

// Standalone worker binary. It shares the bolt database with the API
// process only when they are not run at the same time; the usual setup is
// the API binary with its embedded workers, this exists for batch runs.
func main() {
	_ = godotenv.Load()

	var (
		dbPath  = flag.String("db", envOr("DB_PATH", "statement-analyzer.db"), "path to the bolt database file")
		workers = flag.Int("workers", 5, "concurrent pipeline workers")
	)
	flag.Parse()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	store, err := boltstore.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
	}
	defer store.Close()

	jobQueue := inmemory.NewQueue(100, *workers, store)

	opts := []pipeline.Option{
		pipeline.WithFetcher(gcsfetch.NewClient()),
	}

	if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GOOGLE_GENAI_USE_VERTEXAI") != "" {
		summarizer, err := narrative.NewGemini(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Narrative summarizer unavailable, continuing without it")
		} else {
			opts = append(opts, pipeline.WithSummarizer(summarizer))
		}
	}

	if project := os.Getenv("BQ_PROJECT"); project != "" {
		sink, err := warehouse.NewSink(ctx, project, envOr("BQ_DATASET", "finance"))
		if err != nil {
			log.Warn().Err(err).Msg("Warehouse sink unavailable, continuing without it")
		} else {
			defer sink.Close()
			opts = append(opts, pipeline.WithSink(sink))
		}
	}

	pipe := pipeline.New(store, opts...)

	log.Info().Msg("Starting worker service")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := jobQueue.Start(runCtx, pipe.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("workers", *workers).Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
