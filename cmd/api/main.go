package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finlens/statement-analyzer/internal/api/handlers"
	"github.com/finlens/statement-analyzer/internal/api/middleware"
	"github.com/finlens/statement-analyzer/internal/boltstore"
	"github.com/finlens/statement-analyzer/internal/categorize"
	"github.com/finlens/statement-analyzer/internal/consolidate"
	"github.com/finlens/statement-analyzer/internal/gcsfetch"
	"github.com/finlens/statement-analyzer/internal/jobs/inmemory"
	"github.com/finlens/statement-analyzer/internal/logger"
	"github.com/finlens/statement-analyzer/internal/narrative"
	"github.com/finlens/statement-analyzer/internal/pipeline"
	"github.com/finlens/statement-analyzer/internal/warehouse"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		port      = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		dbPath    = flag.String("db", envOr("DB_PATH", "statement-analyzer.db"), "path to the bolt database file")
		rulesPath = flag.String("rules", os.Getenv("CATEGORY_RULES"), "optional YAML file with category rules")
		workers   = flag.Int("workers", 5, "concurrent pipeline workers")
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

	// Optional pipeline collaborators, enabled by environment.
	opts := []pipeline.Option{
		pipeline.WithFetcher(gcsfetch.NewClient()),
	}

	if *rulesPath != "" {
		rules, err := categorize.LoadRules(*rulesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *rulesPath).Msg("Failed to load category rules")
		}
		opts = append(opts, pipeline.WithCategorizer(categorize.NewEngine(rules)))
	}

	if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GOOGLE_GENAI_USE_VERTEXAI") != "" {
		summarizer, err := narrative.NewGemini(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Narrative summarizer unavailable, continuing without it")
		} else {
			opts = append(opts, pipeline.WithSummarizer(summarizer))
		}
	}

	var totals handlers.TotalsReader
	if project := os.Getenv("BQ_PROJECT"); project != "" {
		sink, err := warehouse.NewSink(ctx, project, envOr("BQ_DATASET", "finance"))
		if err != nil {
			log.Warn().Err(err).Msg("Warehouse sink unavailable, continuing without it")
		} else {
			defer sink.Close()
			opts = append(opts, pipeline.WithSink(sink))
			totals = sink
		}
	}

	pipe := pipeline.New(store, opts...)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Int("workers", *workers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, pipe.Handle); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	consolidator := consolidate.NewService(store, store)

	jobsHandler := handlers.NewJobsHandler(store, jobQueue, totals, log)
	groupsHandler := handlers.NewGroupsHandler(consolidator, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			jobsHandler.CreateJob(w, r)
		case http.MethodGet:
			jobsHandler.ListJobs(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		switch {
		case len(parts) == 1:
			jobsHandler.GetJob(w, r, parts[0])
		case len(parts) == 2 && parts[1] == "warehouse-totals":
			jobsHandler.WarehouseTotals(w, r, parts[0])
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	mux.HandleFunc("/api/groups", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			groupsHandler.CreateGroup(w, r)
		case http.MethodGet:
			groupsHandler.ListGroups(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/groups/", func(w http.ResponseWriter, r *http.Request) {
		routeGroup(groupsHandler, w, r)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
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

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// routeGroup dispatches /api/groups/:id[/jobs[/:jobID]] and
// /api/groups/:id/analysis.
func routeGroup(h *handlers.GroupsHandler, w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/groups/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Group ID is required")
		return
	}
	groupID := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.GetGroup(w, r, groupID)
		case http.MethodDelete:
			h.DeleteGroup(w, r, groupID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case len(parts) == 2 && parts[1] == "analysis" && r.Method == http.MethodGet:
		h.Consolidate(w, r, groupID)
	case len(parts) == 2 && parts[1] == "jobs" && r.Method == http.MethodPost:
		h.AddMember(w, r, groupID)
	case len(parts) == 3 && parts[1] == "jobs" && r.Method == http.MethodDelete:
		h.RemoveMember(w, r, groupID, parts[2])
	default:
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
