package db

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/relgraph/internal/db/queries"
	"github.com/fr0stylo/relgraph/internal/observability"
)

// latencyWindow is how many recent samples each relation query keeps.
const latencyWindow = 256

// QueryLatency summarizes the recent samples of one named relation query.
type QueryLatency struct {
	Name    string
	Command string
	Count   int
	Errors  int
	P50     time.Duration
	P95     time.Duration
	Max     time.Duration
}

// queryRef identifies a query by the sqlc header it starts with, e.g.
// "-- name: FindRelationsByEntity :many".
type queryRef struct {
	name    string
	command string
}

func parseQueryRef(query string) queryRef {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	header, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return queryRef{name: "unknown"}
	}
	fields := strings.Fields(header)
	ref := queryRef{name: "unknown"}
	if len(fields) > 0 {
		ref.name = fields[0]
	}
	if len(fields) > 1 {
		ref.command = strings.TrimPrefix(fields[1], ":")
	}
	return ref
}

type latencyRing struct {
	command string
	samples [latencyWindow]time.Duration
	next    int
	filled  int
	errors  int
}

func (r *latencyRing) add(d time.Duration, failed bool) {
	r.samples[r.next] = d
	r.next = (r.next + 1) % latencyWindow
	if r.filled < latencyWindow {
		r.filled++
	}
	if failed {
		r.errors++
	}
}

type queryLatencyTracker struct {
	mu    sync.Mutex
	rings map[string]*latencyRing

	duration metric.Float64Histogram
	failures metric.Int64Counter
}

func newQueryLatencyTracker() *queryLatencyTracker {
	meter := otel.Meter("github.com/fr0stylo/relgraph/internal/db")
	duration, _ := meter.Float64Histogram("relgraph.db.query.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Relation store query latency."),
	)
	failures, _ := meter.Int64Counter("relgraph.db.query.errors")
	return &queryLatencyTracker{
		rings:    make(map[string]*latencyRing),
		duration: duration,
		failures: failures,
	}
}

func (t *queryLatencyTracker) observe(ctx context.Context, ref queryRef, elapsed time.Duration, err error) {
	if t == nil {
		return
	}
	failed := err != nil && !errors.Is(err, sql.ErrNoRows)

	t.mu.Lock()
	ring, ok := t.rings[ref.name]
	if !ok {
		ring = &latencyRing{command: ref.command}
		t.rings[ref.name] = ring
	}
	ring.add(elapsed, failed)
	t.mu.Unlock()

	attrs := metric.WithAttributes(
		attribute.String("query", ref.name),
		attribute.String("command", ref.command),
	)
	if t.duration != nil {
		t.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
	if failed && t.failures != nil {
		t.failures.Add(ctx, 1, attrs)
	}
}

// snapshot returns one entry per query, slowest p95 first.
func (t *queryLatencyTracker) snapshot() []QueryLatency {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]QueryLatency, 0, len(t.rings))
	for name, ring := range t.rings {
		if ring.filled == 0 {
			continue
		}
		sorted := slices.Clone(ring.samples[:ring.filled])
		slices.Sort(sorted)
		stats = append(stats, QueryLatency{
			Name:    name,
			Command: ring.command,
			Count:   ring.filled,
			Errors:  ring.errors,
			P50:     percentile(sorted, 0.50),
			P95:     percentile(sorted, 0.95),
			Max:     sorted[len(sorted)-1],
		})
	}

	slices.SortFunc(stats, func(a, b QueryLatency) int {
		if a.P95 != b.P95 {
			if a.P95 > b.P95 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	return sorted[int(float64(len(sorted)-1)*q)]
}

// instrumentedDBTX times every relation query and wraps it in a db span.
type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker}
}

func (d *instrumentedDBTX) track(ctx context.Context, query, operation string) (context.Context, func(error)) {
	ref := parseQueryRef(query)
	ctx, span := observability.StartDBSpan(ctx, ref.name, operation)
	start := time.Now()
	return ctx, func(err error) {
		d.tracker.observe(ctx, ref, time.Since(start), err)
		span.RecordError(err)
		span.End()
	}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, done := d.track(ctx, query, "exec")
	result, err := d.inner.ExecContext(ctx, query, args...)
	done(err)
	return result, err
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	ctx, done := d.track(ctx, query, "prepare")
	stmt, err := d.inner.PrepareContext(ctx, query)
	done(err)
	return stmt, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, done := d.track(ctx, query, "query")
	rows, err := d.inner.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext defers its error to Scan, so only latency is recorded.
func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, done := d.track(ctx, query, "query_row")
	row := d.inner.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}
