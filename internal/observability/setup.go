package observability

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Process is the logging and telemetry state shared by the binaries.
type Process struct {
	Log      *slog.Logger
	shutdown func(context.Context) error
}

// StartProcess installs the default logger and, when enabled, the
// OpenTelemetry providers.
func StartProcess(ctx context.Context, cfg OpenTelemetryConfig) (*Process, error) {
	log := NewLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(log)

	shutdown, err := SetupOpenTelemetry(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	return &Process{Log: log, shutdown: shutdown}, nil
}

// Close flushes telemetry, bounded to five seconds.
func (p *Process) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.shutdown(ctx); err != nil {
		p.Log.Error("Failed to shutdown OpenTelemetry", "error", err)
	}
}
