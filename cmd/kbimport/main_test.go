package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fr0stylo/relgraph/internal/adapters/sqlite"
	"github.com/fr0stylo/relgraph/internal/config"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

func TestWriteRelationsWritesTripleArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRelations(&buf, []relations.Triple{{Subject: "A", Object: "B", Label: "r"}}); err != nil {
		t.Fatalf("writeRelations error = %v", err)
	}

	var decoded [][]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 1 || len(decoded[0]) != 3 || decoded[0][2] != "r" {
		t.Fatalf("unexpected output %s", buf.String())
	}
}

func TestWriteRelationsEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRelations(&buf, nil); err != nil {
		t.Fatalf("writeRelations error = %v", err)
	}
	if buf.String() != "[]\n" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunCleanStripsAnnotations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "labelled.txt")
	out := filepath.Join(dir, "raw_text.txt")
	writeFile(t, in, "Ada wrote the first program | PER\n\n   \n  Babbage designed the engine |x|y\n| only a label\n")

	var stdout bytes.Buffer
	if err := run(context.Background(), config.Config{}, "clean", []string{"-in", in, "-out", out}, &stdout); err != nil {
		t.Fatalf("clean error = %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "Ada wrote the first program\nBabbage designed the engine\n" {
		t.Fatalf("unexpected clean output %q", got)
	}
	if !strings.Contains(stdout.String(), "wrote 2 sentences to "+out) {
		t.Fatalf("unexpected progress line %q", stdout.String())
	}
}

func TestRunCleanMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "raw_text.txt")
	err := runClean([]string{"-in", filepath.Join(dir, "missing.txt"), "-out", out}, &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output file, stat error = %v", statErr)
	}
}

func TestRunLoadAppendsThenReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "relations")
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	writeFile(t, first, `[["Ada Lovelace","Charles Babbage","collaborator"],["Acme","Springfield","headquarters location"]]`)
	writeFile(t, second, `[["Ørsted","Denmark","country"]]`)

	var stdout bytes.Buffer
	if err := run(ctx, config.Config{}, "load", []string{"-in", first, "-db", dbPath}, &stdout); err != nil {
		t.Fatalf("load error = %v", err)
	}
	if err := runLoad(ctx, config.Config{}, []string{"-in", first, "-db", dbPath}, &stdout); err != nil {
		t.Fatalf("second load error = %v", err)
	}
	if !strings.Contains(stdout.String(), "loaded 0 new relations, knowledge base holds 2") {
		t.Fatalf("expected duplicate load to insert nothing, got %q", stdout.String())
	}

	stdout.Reset()
	if err := runLoad(ctx, config.Config{}, []string{"-in", second, "-db", dbPath, "-replace"}, &stdout); err != nil {
		t.Fatalf("replace load error = %v", err)
	}
	if !strings.Contains(stdout.String(), "loaded 1 new relations, knowledge base holds 1") {
		t.Fatalf("unexpected replace output %q", stdout.String())
	}

	store, err := sqlite.OpenRelationStore(dbPath)
	if err != nil {
		t.Fatalf("OpenRelationStore error = %v", err)
	}
	defer func() { _ = store.Close() }()
	found, err := store.FindRelationsByEntity(ctx, "ørsted")
	if err != nil {
		t.Fatalf("FindRelationsByEntity error = %v", err)
	}
	if len(found) != 1 || found[0].Object != "Denmark" {
		t.Fatalf("unexpected relations after replace %+v", found)
	}
}

func TestRunLoadReplaceKeepsStoreOnBadFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "relations")
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, good, `[["Ada Lovelace","Charles Babbage","collaborator"]]`)
	writeFile(t, bad, `[["only","two"]]`)

	if err := runLoad(ctx, config.Config{}, []string{"-in", good, "-db", dbPath}, &bytes.Buffer{}); err != nil {
		t.Fatalf("load error = %v", err)
	}
	if err := runLoad(ctx, config.Config{}, []string{"-in", bad, "-db", dbPath, "-replace"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected malformed relations file to fail")
	}

	store, err := sqlite.OpenRelationStore(dbPath)
	if err != nil {
		t.Fatalf("OpenRelationStore error = %v", err)
	}
	defer func() { _ = store.Close() }()
	total, err := store.CountRelations(ctx)
	if err != nil {
		t.Fatalf("CountRelations error = %v", err)
	}
	if total != 1 {
		t.Fatalf("expected original relation to survive, got %d", total)
	}
}

func TestRunExtractRequiresLLM(t *testing.T) {
	t.Parallel()

	err := runExtract(context.Background(), config.Config{}, []string{"-in", "unused.txt"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "RELGRAPH_OLLAMA_URL") {
		t.Fatalf("expected missing ollama url error, got %v", err)
	}
}

func TestRunExtractWritesRelationsFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		response := "<triplet> Acme Corp <subj> Springfield <obj> headquarters location"
		if strings.Contains(req.Prompt, "Ada Lovelace") {
			response = "<triplet> Ada Lovelace <subj> Charles Babbage <obj> collaborator"
		}
		body, _ := json.Marshal(map[string]any{"model": "rebel", "response": response, "done": true})
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write(append(body, '\n'))
	}))
	defer srv.Close()

	dir := t.TempDir()
	in := filepath.Join(dir, "raw_text.txt")
	out := filepath.Join(dir, "relations.json")
	writeFile(t, in, "Ada Lovelace worked with Charles Babbage.\nAcme Corp is based in Springfield town. Short.")

	cfg := config.Config{LLM: config.LLMConfig{OllamaURL: srv.URL, Model: "rebel", MaxConcurrency: 2}}
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, "extract", []string{"-in", in, "-out", out}, &stdout); err != nil {
		t.Fatalf("extract error = %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read relations: %v", err)
	}
	var decoded [][]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode relations: %v", err)
	}
	want := [][]string{
		{"Ada Lovelace", "Charles Babbage", "collaborator"},
		{"Acme Corp", "Springfield", "headquarters location"},
	}
	if len(decoded) != len(want) {
		t.Fatalf("unexpected relations %v", decoded)
	}
	for i := range want {
		if strings.Join(decoded[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("relation %d = %v, want %v", i, decoded[i], want[i])
		}
	}
	if !strings.Contains(stdout.String(), "2 sentences") || !strings.Contains(stdout.String(), "extracted 2 unique relations (0 sentences failed)") {
		t.Fatalf("unexpected progress output %q", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), config.Config{}, "export", nil, &bytes.Buffer{})
	if !errors.Is(err, errUnknownCommand) {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}
