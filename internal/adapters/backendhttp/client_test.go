package backendhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

func TestQueryURLPercentEncodesQuestion(t *testing.T) {
	t.Parallel()

	client, err := NewClient("http://127.0.0.1:5000/", 0)
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}
	got := client.QueryURL("who is Ada & co? 1+1")
	want := "http://127.0.0.1:5000/query?q=who%20is%20Ada%20%26%20co%3F%201%2B1"
	if got != want {
		t.Fatalf("QueryURL = %s, want %s", got, want)
	}
}

func TestQueryURLLeavesComponentSafeMarks(t *testing.T) {
	t.Parallel()

	client, err := NewClient("http://127.0.0.1:5000", 0)
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}
	got := client.QueryURL("O'Brien (CEO)! *_-.~ x/y")
	want := "http://127.0.0.1:5000/query?q=O'Brien%20(CEO)!%20*_-.~%20x%2Fy"
	if got != want {
		t.Fatalf("QueryURL = %s, want %s", got, want)
	}
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	t.Parallel()

	client, err := NewClient("", 0)
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}
	if got := client.QueryURL("a"); got != DefaultBaseURL+"/query?q=a" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("localhost-only", 0); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestQueryDecodesAnswer(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery.Store(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"Ada wrote notes.","edges":[["Ada","Notes","author"]]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient error = %v", err)
	}
	result, err := client.Query(context.Background(), "who is Ada?")
	if err != nil {
		t.Fatalf("Query error = %v", err)
	}
	if gotQuery.Load() != "who is Ada?" {
		t.Fatalf("backend saw q=%v", gotQuery.Load())
	}
	if result.Summary != "Ada wrote notes." || len(result.Relations) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestQueryTreatsErrorStatusWithErrorBodyAsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Query parameter 'q' is required."}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	result, err := client.Query(context.Background(), "x")
	if err != nil {
		t.Fatalf("Query error = %v", err)
	}
	if !result.Failed() || result.Message != "Query parameter 'q' is required." {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestQueryNonJSONBodyIsTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	_, err := client.Query(context.Background(), "x")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestQueryMalformedShapeIsNotTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"wrong key"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	_, err := client.Query(context.Background(), "x")
	if !errors.Is(err, relations.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if errors.Is(err, ErrTransport) {
		t.Fatalf("malformed shape must not be reported as transport failure: %v", err)
	}
}

func TestQueryConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, _ := NewClient(addr, time.Second)
	_, err := client.Query(context.Background(), "x")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
