package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

type graphResponse struct {
	Outcome string             `json:"outcome"`
	Summary string             `json:"summary"`
	Error   string             `json:"error,omitempty"`
	Graph   *relations.Graph   `json:"graph,omitempty"`
	Network *relations.Network `json:"network,omitempty"`
}

// handleGraphData runs the same pipeline as the stream endpoint and returns
// the final state of every region as one JSON document.
func (v *ViewRoutes) handleGraphData(c echo.Context) error {
	captured := &capturedRegions{}
	view := appservices.NewView(capturedSummary{captured}, capturedGraph{captured}, capturedNotifier{captured})

	outcome, err := v.pipeline.Submit(c.Request().Context(), c.QueryParam("q"), view)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if outcome == appservices.OutcomeRejected {
		return c.JSON(http.StatusBadRequest, graphResponse{Outcome: string(outcome), Error: captured.alert})
	}

	resp := graphResponse{Outcome: string(outcome), Summary: captured.summary}
	switch outcome {
	case appservices.OutcomeUnreachable, appservices.OutcomeMalformed, appservices.OutcomeBackendError:
		resp.Error = captured.summary
	case appservices.OutcomeGraph:
		resp.Graph = captured.graph
		resp.Network = captured.network
	}
	return c.JSON(http.StatusOK, resp)
}

type capturedRegions struct {
	summary string
	alert   string
	graph   *relations.Graph
	network *relations.Network
}

type capturedSummary struct{ r *capturedRegions }

func (s capturedSummary) ShowPlaceholder(_ context.Context, text string) error {
	s.r.summary = text
	return nil
}

func (s capturedSummary) ShowText(_ context.Context, text string) error {
	s.r.summary = text
	return nil
}

type capturedGraph struct{ r *capturedRegions }

func (g capturedGraph) ShowPlaceholder(context.Context, string) error {
	g.r.graph = nil
	g.r.network = nil
	return nil
}

func (g capturedGraph) Render(_ context.Context, graph relations.Graph, style relations.Style) error {
	network := relations.BuildNetwork(graph, style)
	g.r.graph = &graph
	g.r.network = &network
	return nil
}

type capturedNotifier struct{ r *capturedRegions }

func (n capturedNotifier) Alert(_ context.Context, message string) error {
	n.r.alert = message
	return nil
}
