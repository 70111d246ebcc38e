package routes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
	"github.com/fr0stylo/relgraph/internal/renderer"
	"github.com/fr0stylo/relgraph/views/components"
)

const (
	eventSummary = "summary"
	eventGraph   = "graph"
	eventAlert   = "alert"
	eventDone    = "done"
)

// handleQueryStream runs the pipeline for one question and streams every
// region update as a server-sent event.
func (v *ViewRoutes) handleQueryStream(c echo.Context) error {
	w := c.Response().Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("streaming unsupported")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	stream := &eventStream{w: c.Response(), flusher: flusher}
	view := appservices.NewView(streamSummaryRegion{stream}, streamGraphRegion{stream}, streamNotifier{stream})

	ctx := c.Request().Context()
	outcome, err := v.pipeline.Submit(ctx, c.QueryParam("q"), view)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		slog.ErrorContext(ctx, "query_stream_failed", "error", err)
		return nil
	}
	return stream.send(eventDone, string(outcome))
}

type eventStream struct {
	mu      sync.Mutex
	w       *echo.Response
	flusher http.Flusher
}

func (s *eventStream) send(event, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data = strings.ReplaceAll(strings.ReplaceAll(data, "\r", ""), "\n", " ")
	if _, err := s.w.Write([]byte("event: " + event + "\ndata: " + data + "\n\n")); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *eventStream) sendFragment(ctx context.Context, event string, component templ.Component) error {
	payload, err := renderer.Fragment(ctx, component)
	if err != nil {
		return err
	}
	return s.send(event, payload)
}

type streamSummaryRegion struct{ stream *eventStream }

func (r streamSummaryRegion) ShowPlaceholder(ctx context.Context, text string) error {
	return r.stream.sendFragment(ctx, eventSummary, components.SummaryPlaceholder(text))
}

func (r streamSummaryRegion) ShowText(ctx context.Context, text string) error {
	return r.stream.sendFragment(ctx, eventSummary, components.SummaryText(text))
}

type streamGraphRegion struct{ stream *eventStream }

func (r streamGraphRegion) ShowPlaceholder(ctx context.Context, text string) error {
	return r.stream.sendFragment(ctx, eventGraph, components.GraphPlaceholder(text))
}

func (r streamGraphRegion) Render(ctx context.Context, graph relations.Graph, style relations.Style) error {
	return r.stream.sendFragment(ctx, eventGraph, components.GraphCanvas(relations.BuildNetwork(graph, style)))
}

type streamNotifier struct{ stream *eventStream }

func (n streamNotifier) Alert(_ context.Context, message string) error {
	return n.stream.send(eventAlert, message)
}
