package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
)

func TestRunBlankQuestionExitsWithUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-q", "   "}, &stdout, &stderr)

	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), appservices.MessageEmptyQuestion) {
		t.Fatalf("expected alert on stderr, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", stdout.String())
	}
}

func TestRunPrintsSummaryAndDOT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "who is A?" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"summary":"A likes B.","edges":[["A","B","likes"]]}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-q", "who is A?", "-format", "dot", "-backend", srv.URL}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "A likes B.\n") || !strings.Contains(out, `"A" -> "B" [label="likes"];`) {
		t.Fatalf("unexpected stdout %q", out)
	}
	if !strings.Contains(stderr.String(), appservices.MessageSummaryLoading) {
		t.Fatalf("expected loading placeholder on stderr, got %q", stderr.String())
	}
}

func TestRunUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-q", "x", "-backend", url}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), appservices.MessageBackendUnreachable) {
		t.Fatalf("expected connect message, got %q", stdout.String())
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-q", "x", "-format", "svg"}, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}
