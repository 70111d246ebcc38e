package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
	"github.com/fr0stylo/relgraph/internal/renderer"
)

type backendFunc func(ctx context.Context, question string) (relations.Result, error)

func (f backendFunc) Query(ctx context.Context, question string) (relations.Result, error) {
	return f(ctx, question)
}

func newViewServer(backend backendFunc) *echo.Echo {
	e := echo.New()
	e.Renderer = &renderer.Renderer{}
	NewViewRoutes(appservices.NewQueryPipeline(backend)).RegisterRoutes(e)
	return e
}

type sseEvent struct {
	name string
	data string
}

func parseEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			default:
				t.Fatalf("unexpected stream line %q", line)
			}
		}
		events = append(events, ev)
	}
	return events
}

func TestHomeRendersQueryPage(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(context.Context, string) (relations.Result, error) {
		t.Fatal("backend must not be called when rendering the page")
		return relations.Result{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, id := range []string{`id="entityInput"`, `id="queryBtn"`, `id="summary-output"`, `id="graph-container"`} {
		if !strings.Contains(body, id) {
			t.Fatalf("page missing %s", id)
		}
	}
}

func TestQueryStreamEmitsLoadingThenGraph(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(_ context.Context, question string) (relations.Result, error) {
		if question != "who is Ada?" {
			t.Errorf("unexpected question %q", question)
		}
		return relations.Answer("Ada wrote\nnotes.", []relations.Triple{
			{Subject: "Ada", Object: "Babbage", Label: "collaborator"},
		}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/query/stream?q=who+is+Ada%3F", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	events := parseEvents(t, rec.Body.String())
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.name)
	}
	want := []string{eventSummary, eventGraph, eventSummary, eventGraph, eventDone}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected events %v, want %v", names, want)
	}
	if !strings.Contains(events[0].data, appservices.MessageSummaryLoading) {
		t.Fatalf("expected loading summary first, got %q", events[0].data)
	}
	if !strings.Contains(events[2].data, "Ada wrote&#10;notes.") {
		t.Fatalf("expected summary newline kept as entity, got %q", events[2].data)
	}
	if !strings.Contains(events[3].data, "graph-canvas") || !strings.Contains(events[3].data, "Babbage") {
		t.Fatalf("expected rendered graph canvas, got %q", events[3].data)
	}
	if events[4].data != string(appservices.OutcomeGraph) {
		t.Fatalf("unexpected done payload %q", events[4].data)
	}
}

func TestQueryStreamBlankQuestionAlerts(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(context.Context, string) (relations.Result, error) {
		t.Error("backend must not be called for a blank question")
		return relations.Result{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/query/stream?q=%20%20", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	events := parseEvents(t, rec.Body.String())
	if len(events) != 2 || events[0].name != eventAlert || events[1].name != eventDone {
		t.Fatalf("expected alert then done, got %+v", events)
	}
	if events[0].data != appservices.MessageEmptyQuestion {
		t.Fatalf("unexpected alert %q", events[0].data)
	}
}

func TestGraphDataReturnsNetwork(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(context.Context, string) (relations.Result, error) {
		return relations.Answer("ok", []relations.Triple{
			{Subject: "A", Object: "B", Label: "likes"},
			{Subject: "B", Object: "C", Label: "likes"},
		}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/graph?q=A", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Outcome string          `json:"outcome"`
		Summary string          `json:"summary"`
		Graph   relations.Graph `json:"graph"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Outcome != string(appservices.OutcomeGraph) || resp.Summary != "ok" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Graph.Nodes) != 3 || len(resp.Graph.Edges) != 2 {
		t.Fatalf("unexpected graph %+v", resp.Graph)
	}
}

func TestGraphDataUnreachableBackend(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(context.Context, string) (relations.Result, error) {
		return relations.Result{}, errors.New("connection refused")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/graph?q=A", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp graphResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != appservices.MessageBackendUnreachable || resp.Graph != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGraphDataBlankQuestion(t *testing.T) {
	t.Parallel()

	e := newViewServer(func(context.Context, string) (relations.Result, error) {
		t.Error("backend must not be called for a blank question")
		return relations.Result{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
