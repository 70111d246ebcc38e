package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
)

// ViewRoutes serves the query page and the pipeline endpoints behind it.
type ViewRoutes struct {
	pipeline *appservices.QueryPipeline
}

// NewViewRoutes constructs view routes.
func NewViewRoutes(pipeline *appservices.QueryPipeline) *ViewRoutes {
	return &ViewRoutes{pipeline: pipeline}
}

// RegisterRoutes registers view routes.
func (v *ViewRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/", v.handleHome)
	s.GET("/healthz", handleHealth)
	s.GET("/query/stream", v.handleQueryStream)
	s.GET("/api/graph", v.handleGraphData)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
