package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

const messageQuestionRequired = "Query parameter 'q' is required."

// BackendRoutes serves the relation query API front ends call.
type BackendRoutes struct {
	answers *appservices.AnswerService
}

// NewBackendRoutes constructs backend routes.
func NewBackendRoutes(answers *appservices.AnswerService) *BackendRoutes {
	return &BackendRoutes{answers: answers}
}

// RegisterRoutes registers backend routes.
func (b *BackendRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/query", b.handleQuery)
	s.GET("/healthz", handleHealth)
}

func (b *BackendRoutes) handleQuery(c echo.Context) error {
	result, err := b.answers.Answer(c.Request().Context(), c.QueryParam("q"))
	if errors.Is(err, appservices.ErrEmptyQuestion) {
		return c.JSON(http.StatusBadRequest, relations.Failure(messageQuestionRequired))
	}
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "answer_query_failed", "error", err)
		return c.JSON(http.StatusInternalServerError, relations.Failure("Failed to answer the query."))
	}
	return c.JSON(http.StatusOK, result)
}
