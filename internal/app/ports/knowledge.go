package ports

import (
	"context"
	"time"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// RelationStore persists the knowledge base of relation triples.
type RelationStore interface {
	InsertRelations(ctx context.Context, triples []relations.Triple) (int, error)
	FindRelationsByEntity(ctx context.Context, keyword string) ([]relations.Triple, error)
	ListEntities(ctx context.Context) ([]string, error)
	CountRelations(ctx context.Context) (int, error)
}

// LanguageModel generates text for a prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// QueryAnswered describes one answered backend query.
type QueryAnswered struct {
	Question  string
	Keyword   string
	Relations int
	Summary   string
	At        time.Time
}

// AnswerPublisher forwards answered queries to an audit sink.
type AnswerPublisher interface {
	PublishAnswered(ctx context.Context, event QueryAnswered) error
}
