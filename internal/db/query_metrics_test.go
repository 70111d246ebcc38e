package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseQueryRef(t *testing.T) {
	t.Parallel()

	cases := map[string]queryRef{
		"-- name: FindRelationsByEntity :many\nSELECT 1": {name: "FindRelationsByEntity", command: "many"},
		"  -- name: CountRelations :one":                 {name: "CountRelations", command: "one"},
		"-- name: DeleteRelations":                       {name: "DeleteRelations"},
		"SELECT 1":                                       {name: "unknown"},
		"-- name:":                                       {name: "unknown"},
	}
	for query, want := range cases {
		if got := parseQueryRef(query); got != want {
			t.Fatalf("parseQueryRef(%q) = %+v, want %+v", query, got, want)
		}
	}
}

func TestLatencyTrackerKeepsRecentWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newQueryLatencyTracker()
	ref := queryRef{name: "InsertRelation", command: "execrows"}
	for i := 1; i <= latencyWindow+10; i++ {
		tracker.observe(ctx, ref, time.Duration(i)*time.Millisecond, nil)
	}
	tracker.observe(ctx, ref, time.Millisecond, errors.New("constraint failed"))

	stats := tracker.snapshot()
	if len(stats) != 1 {
		t.Fatalf("expected one query, got %+v", stats)
	}
	got := stats[0]
	if got.Count != latencyWindow {
		t.Fatalf("expected window of %d samples, got %d", latencyWindow, got.Count)
	}
	if got.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", got.Errors)
	}
	if got.Max != time.Duration(latencyWindow+10)*time.Millisecond {
		t.Fatalf("unexpected max %s", got.Max)
	}
	if got.Command != "execrows" {
		t.Fatalf("unexpected command %q", got.Command)
	}
}

func TestLatencySnapshotOrdersSlowestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newQueryLatencyTracker()
	tracker.observe(ctx, queryRef{name: "CountRelations"}, time.Millisecond, nil)
	tracker.observe(ctx, queryRef{name: "FindRelationsByEntity"}, 40*time.Millisecond, nil)
	tracker.observe(ctx, queryRef{name: "ListEntities"}, 40*time.Millisecond, nil)

	stats := tracker.snapshot()
	names := []string{stats[0].Name, stats[1].Name, stats[2].Name}
	want := []string{"FindRelationsByEntity", "ListEntities", "CountRelations"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", names, want)
		}
	}
}
