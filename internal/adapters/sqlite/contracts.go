package sqlite

import (
	"context"

	"github.com/fr0stylo/relgraph/internal/db/queries"
)

type relationDatabase interface {
	InsertRelations(ctx context.Context, params []queries.InsertRelationParams) (int64, error)
	ReplaceRelations(ctx context.Context, params []queries.InsertRelationParams) (int64, error)
	FindRelationsByEntity(ctx context.Context, keyword string) ([]queries.FindRelationsByEntityRow, error)
	ListEntities(ctx context.Context) ([]string, error)
	CountRelations(ctx context.Context) (int64, error)
}
