package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

const (
	MessageEmptyQuestion      = "Please enter a question to analyze."
	MessageSummaryLoading     = "🤖 AI is thinking..."
	MessageGraphLoading       = "Loading graph..."
	MessageNoGraph            = "No graph to display."
	MessageBackendUnreachable = "❌ Failed to connect to the backend server. Is it running?"
	MessageMalformedResponse  = "❌ The backend returned an unexpected response."
)

// Outcome classifies how one submission ended.
type Outcome string

const (
	OutcomeRejected     Outcome = "rejected"
	OutcomeUnreachable  Outcome = "unreachable"
	OutcomeMalformed    Outcome = "malformed"
	OutcomeBackendError Outcome = "backend_error"
	OutcomeNoRelations  Outcome = "no_relations"
	OutcomeGraph        Outcome = "graph"
	OutcomeStale        Outcome = "stale"
)

// View bundles the display regions one user looks at. Submissions through
// the same View are sequenced: a response that resolves after a newer
// submission started is dropped.
type View struct {
	Summary  ports.SummaryRegion
	Graph    ports.GraphRegion
	Notifier ports.Notifier

	seq atomic.Uint64
}

func NewView(summary ports.SummaryRegion, graph ports.GraphRegion, notifier ports.Notifier) *View {
	return &View{Summary: summary, Graph: graph, Notifier: notifier}
}

func (v *View) begin() uint64 {
	return v.seq.Add(1)
}

func (v *View) current(seq uint64) bool {
	return v.seq.Load() == seq
}

// QueryPipeline runs one question through the backend and writes the
// outcome into a View.
type QueryPipeline struct {
	backend ports.QueryBackend
	style   relations.Style
	metrics pipelineMetrics
}

type pipelineMetrics struct {
	queries metric.Int64Counter
}

func newPipelineMetrics() pipelineMetrics {
	meter := otel.Meter("github.com/fr0stylo/relgraph/internal/app/services")
	queries, _ := meter.Int64Counter("relgraph.pipeline.queries")
	return pipelineMetrics{queries: queries}
}

func NewQueryPipeline(backend ports.QueryBackend) *QueryPipeline {
	return &QueryPipeline{
		backend: backend,
		style:   relations.DefaultStyle(),
		metrics: newPipelineMetrics(),
	}
}

// Style returns the visual configuration passed to graph regions.
func (p *QueryPipeline) Style() relations.Style {
	return p.style
}

// Submit validates the question and, when it is not blank, runs the
// query. Region write failures are returned; backend failures are not,
// they are rendered into the view.
func (p *QueryPipeline) Submit(ctx context.Context, question string, view *View) (Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		p.record(ctx, OutcomeRejected)
		return OutcomeRejected, view.Notifier.Alert(ctx, MessageEmptyQuestion)
	}

	seq := view.begin()
	if err := view.Summary.ShowPlaceholder(ctx, MessageSummaryLoading); err != nil {
		return "", err
	}
	if err := view.Graph.ShowPlaceholder(ctx, MessageGraphLoading); err != nil {
		return "", err
	}

	result, err := p.backend.Query(ctx, question)
	if !view.current(seq) {
		p.record(ctx, OutcomeStale)
		return OutcomeStale, nil
	}
	if err != nil {
		return p.showQueryError(ctx, question, err, view)
	}

	if result.Failed() {
		p.record(ctx, OutcomeBackendError)
		return OutcomeBackendError, view.Summary.ShowText(ctx, "Error: "+result.Message)
	}

	if err := view.Summary.ShowText(ctx, result.Summary); err != nil {
		return "", err
	}
	if len(result.Relations) == 0 {
		p.record(ctx, OutcomeNoRelations)
		return OutcomeNoRelations, view.Graph.ShowPlaceholder(ctx, MessageNoGraph)
	}

	p.record(ctx, OutcomeGraph)
	return OutcomeGraph, view.Graph.Render(ctx, relations.BuildGraph(result.Relations), p.style)
}

func (p *QueryPipeline) showQueryError(ctx context.Context, question string, queryErr error, view *View) (Outcome, error) {
	outcome := OutcomeUnreachable
	message := MessageBackendUnreachable
	if errors.Is(queryErr, relations.ErrMalformedResponse) {
		outcome = OutcomeMalformed
		message = MessageMalformedResponse
	}
	slog.ErrorContext(ctx, "backend_query_failed", "outcome", string(outcome), "question", question, "error", queryErr)
	p.record(ctx, outcome)

	if err := view.Summary.ShowText(ctx, message); err != nil {
		return "", err
	}
	return outcome, view.Graph.ShowPlaceholder(ctx, MessageNoGraph)
}

func (p *QueryPipeline) record(ctx context.Context, outcome Outcome) {
	p.metrics.queries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}
