package db

import (
	"context"
	"log/slog"
)

// QueryLatencyStats returns the recent latency distribution of every
// relation query run through this handle.
func (c *Database) QueryLatencyStats() []QueryLatency {
	if c == nil || c.tracker == nil {
		return nil
	}
	return c.tracker.snapshot()
}

// LogQueryLatency logs the slowest tracked queries by p95.
func (c *Database) LogQueryLatency(ctx context.Context, log *slog.Logger, limit int) {
	stats := c.QueryLatencyStats()
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	for _, entry := range stats {
		log.InfoContext(ctx, "db_query_latency",
			"query", entry.Name,
			"command", entry.Command,
			"count", entry.Count,
			"errors", entry.Errors,
			"p50_ms", entry.P50.Milliseconds(),
			"p95_ms", entry.P95.Milliseconds(),
			"max_ms", entry.Max.Milliseconds(),
		)
	}
}
