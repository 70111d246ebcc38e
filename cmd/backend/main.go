package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/relgraph/internal/adapters/audit"
	"github.com/fr0stylo/relgraph/internal/adapters/ollama"
	"github.com/fr0stylo/relgraph/internal/adapters/sqlite"
	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/config"
	"github.com/fr0stylo/relgraph/internal/db"
	"github.com/fr0stylo/relgraph/internal/observability"
	"github.com/fr0stylo/relgraph/internal/server"
	"github.com/fr0stylo/relgraph/internal/server/routes"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Observability.ServiceName == "relgraph" {
		cfg.Observability.ServiceName = "relgraph-backend"
	}

	process, err := observability.StartProcess(ctx, cfg.Telemetry())
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer process.Close()
	log := process.Log

	database, err := db.New(cfg.Knowledge.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()
	if cfg.Knowledge.LogTiming {
		go logDBLatencyStats(ctx, log, database)
	}

	store := sqlite.NewSharedRelationStore(database)
	loadKnowledgeBase(ctx, log, store, cfg.Knowledge.RelationsFile)

	var opts []appservices.AnswerOption
	if cfg.LLMEnabled() {
		model, err := ollama.NewClient(ollama.Params{
			BaseURL:               cfg.LLM.OllamaURL,
			Model:                 cfg.LLM.Model,
			APIKey:                cfg.LLM.APIKey,
			MaxConcurrentRequests: cfg.LLM.MaxConcurrency,
		})
		if err != nil {
			return fmt.Errorf("failed to configure ollama: %w", err)
		}
		opts = append(opts, appservices.WithLanguageModel(model))
		log.Info("LLM enabled", "model", cfg.LLM.Model, "url", cfg.LLM.OllamaURL)
	} else {
		log.Warn("RELGRAPH_OLLAMA_URL not set, answering with keyword matching and fact lists")
	}
	if cfg.EventsEnabled() {
		opts = append(opts, appservices.WithAnswerPublisher(audit.NewPublisher(cfg.Events.URL, cfg.Events.Token, cfg.Events.Secret)))
	}

	srv := server.New(log, server.WithService(cfg.Observability.ServiceName), server.WithCORS())
	srv.RegisterRouter(routes.NewBackendRoutes(appservices.NewAnswerService(store, opts...)))

	addr := fmt.Sprintf(":%d", cfg.Backend.Port)
	log.Info("Starting backend", "port", cfg.Backend.Port)
	return srv.Serve(ctx, addr)
}

func loadKnowledgeBase(ctx context.Context, log *slog.Logger, store *sqlite.RelationStore, path string) {
	if path == "" {
		return
	}
	inserted, err := appservices.LoadRelationsFile(ctx, store, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("Relations file not found, run kbimport first", "path", path)
	} else if err != nil {
		log.Error("Failed to load relations file", "path", path, "error", err)
	}

	total, countErr := store.CountRelations(ctx)
	if countErr != nil {
		log.Error("Failed to count relations", "error", countErr)
		return
	}
	log.Info("Knowledge base loaded", "inserted", inserted, "relations", total)
}

func logDBLatencyStats(ctx context.Context, log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			database.LogQueryLatency(ctx, log, 5)
		}
	}
}

func main() {
	if err := Run(); err != nil {
		slog.Error("backend exited", "error", err)
		os.Exit(1)
	}
}
