package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/relgraph"
	"github.com/fr0stylo/relgraph/internal/adapters/backendhttp"
	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/config"
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

	process, err := observability.StartProcess(ctx, cfg.Telemetry())
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer process.Close()
	log := process.Log

	backend, err := backendhttp.NewClient(cfg.Backend.URL, cfg.BackendTimeout())
	if err != nil {
		return fmt.Errorf("failed to configure backend client: %w", err)
	}

	srv := server.New(log, server.WithService("relgraph"), server.WithStatic(relgraph.PublicFS))
	srv.RegisterRouter(routes.NewViewRoutes(appservices.NewQueryPipeline(backend)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting server", "port", cfg.Server.Port, "backend", cfg.Backend.URL)
	return srv.Serve(ctx, addr)
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
