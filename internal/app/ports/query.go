package ports

import (
	"context"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// QueryBackend answers one free-text question.
type QueryBackend interface {
	Query(ctx context.Context, question string) (relations.Result, error)
}

// SummaryRegion is the display target for summary text. Every call
// replaces the whole region content.
type SummaryRegion interface {
	ShowPlaceholder(ctx context.Context, text string) error
	ShowText(ctx context.Context, text string) error
}

// GraphRegion is the display target for the relation graph.
type GraphRegion interface {
	ShowPlaceholder(ctx context.Context, text string) error
	Render(ctx context.Context, graph relations.Graph, style relations.Style) error
}

// Notifier raises a blocking user notification.
type Notifier interface {
	Alert(ctx context.Context, message string) error
}
