package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fr0stylo/relgraph/internal/db/queries"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "relations-test"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestInsertRelationsSkipsDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)

	inserted, err := database.InsertRelations(ctx, []queries.InsertRelationParams{
		{Subject: "Ada Lovelace", Object: "Charles Babbage", Label: "collaborator"},
		{Subject: "Lord Byron", Object: "Ada Lovelace", Label: "child"},
		{Subject: "Ada Lovelace", Object: "Charles Babbage", Label: "collaborator"},
	})
	if err != nil {
		t.Fatalf("insert relations: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 new relations, got %d", inserted)
	}

	count, err := database.CountRelations(ctx)
	if err != nil {
		t.Fatalf("count relations: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored relations, got %d", count)
	}
}

func TestFindRelationsByEntityIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.InsertRelations(ctx, []queries.InsertRelationParams{
		{Subject: "Ada Lovelace", Object: "Charles Babbage", Label: "collaborator"},
		{Subject: "Lord Byron", Object: "Ada Lovelace", Label: "child"},
		{Subject: "Alan Turing", Object: "Bletchley Park", Label: "workplace"},
		{Subject: "Percent", Object: "100% sure", Label: "odd_%_label"},
	}); err != nil {
		t.Fatalf("seed relations: %v", err)
	}

	rows, err := database.FindRelationsByEntity(ctx, "LOVELACE")
	if err != nil {
		t.Fatalf("find relations: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Subject != "Ada Lovelace" || rows[1].Subject != "Lord Byron" {
		t.Fatalf("expected insertion order, got %+v", rows)
	}

	rows, err = database.FindRelationsByEntity(ctx, "%")
	if err != nil {
		t.Fatalf("find relations: %v", err)
	}
	if len(rows) != 1 || rows[0].Subject != "Percent" {
		t.Fatalf("expected literal match on %%, got %+v", rows)
	}
}

func TestListEntitiesIsDistinctAndSorted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.InsertRelations(ctx, []queries.InsertRelationParams{
		{Subject: "B", Object: "A", Label: "likes"},
		{Subject: "A", Object: "C", Label: "likes"},
	}); err != nil {
		t.Fatalf("seed relations: %v", err)
	}

	entities, err := database.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(entities) != 3 || entities[0] != "A" || entities[1] != "B" || entities[2] != "C" {
		t.Fatalf("unexpected entities %v", entities)
	}
}

func TestReplaceRelations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.InsertRelations(ctx, []queries.InsertRelationParams{
		{Subject: "old", Object: "x", Label: "r"},
	}); err != nil {
		t.Fatalf("seed relations: %v", err)
	}

	if _, err := database.ReplaceRelations(ctx, []queries.InsertRelationParams{
		{Subject: "new", Object: "y", Label: "r"},
	}); err != nil {
		t.Fatalf("replace relations: %v", err)
	}

	rows, err := database.FindRelationsByEntity(ctx, "old")
	if err != nil {
		t.Fatalf("find relations: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected old relations gone, got %+v", rows)
	}
	count, err := database.CountRelations(ctx)
	if err != nil {
		t.Fatalf("count relations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 relation, got %d", count)
	}
}

func TestQueryLatencyIsTrackedByQueryName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.CountRelations(ctx); err != nil {
		t.Fatalf("count relations: %v", err)
	}

	found := false
	for _, stat := range database.QueryLatencyStats() {
		if stat.Name == "CountRelations" && stat.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CountRelations latency sample, got %+v", database.QueryLatencyStats())
	}
}

func TestFindRelationsByEntityFoldsNonASCII(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.InsertRelations(ctx, []queries.InsertRelationParams{
		{Subject: "Ørsted", Object: "Denmark", Label: "country"},
		{Subject: "Škoda Auto", Object: "Volkswagen Group", Label: "parent organization"},
		{Subject: "Élan", Object: "Straße AG", Label: "supplier"},
	}); err != nil {
		t.Fatalf("seed relations: %v", err)
	}

	cases := map[string]string{
		"ørsted":  "Ørsted",
		"ØRSTED":  "Ørsted",
		"škoda":   "Škoda Auto",
		"élan":    "Élan",
		"strasse": "Élan",
	}
	for keyword, subject := range cases {
		rows, err := database.FindRelationsByEntity(ctx, keyword)
		if err != nil {
			t.Fatalf("find relations %q: %v", keyword, err)
		}
		if len(rows) != 1 || rows[0].Subject != subject {
			t.Fatalf("FindRelationsByEntity(%q) = %+v, want subject %q", keyword, rows, subject)
		}
	}
}

func TestBackfillFoldsRowsWrittenWithoutFolds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := openTestDB(t)
	if _, err := database.db.ExecContext(ctx,
		`INSERT INTO relations (subject, object, label) VALUES ('Ørsted', 'Denmark', 'country')`); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	updated, err := database.backfillFolds(ctx)
	if err != nil {
		t.Fatalf("backfill folds: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 row folded, got %d", updated)
	}

	rows, err := database.FindRelationsByEntity(ctx, "ørsted")
	if err != nil {
		t.Fatalf("find relations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected folded legacy row to match, got %+v", rows)
	}
}
