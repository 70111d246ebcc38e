package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/relgraph/internal/adapters/backendhttp"
	"github.com/fr0stylo/relgraph/internal/adapters/terminal"
	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/config"
	"github.com/fr0stylo/relgraph/internal/observability"
)

const exitUsage = 2

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	question := fs.String("q", "", "question to analyze")
	format := fs.String("format", string(terminal.FormatText), "graph output: text or dot")
	backendURL := fs.String("backend", cfg.Backend.URL, "backend base url")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	graphFormat, err := terminal.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	slog.SetDefault(observability.NewLogger(stderr, slog.LevelWarn))

	backend, err := backendhttp.NewClient(*backendURL, cfg.BackendTimeout())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	regions := terminal.NewRegions(stdout, stderr, graphFormat)
	view := appservices.NewView(regions.Summary(), regions.Graph(), regions.Notifier())
	outcome, err := appservices.NewQueryPipeline(backend).Submit(ctx, *question, view)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	switch outcome {
	case appservices.OutcomeRejected:
		return exitUsage
	case appservices.OutcomeUnreachable, appservices.OutcomeMalformed, appservices.OutcomeBackendError:
		return 1
	default:
		return 0
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
