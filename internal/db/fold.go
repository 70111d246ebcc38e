package db

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"

	"github.com/fr0stylo/relgraph/internal/db/queries"
)

// Fold returns the Unicode case-folded form stored next to every entity.
// Lookups compare folded keyword against folded columns because sqlite's
// lower() only folds ASCII.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func foldParams(params []queries.InsertRelationParams) []queries.InsertRelationParams {
	out := make([]queries.InsertRelationParams, len(params))
	for i, p := range params {
		p.SubjectFold = Fold(p.Subject)
		p.ObjectFold = Fold(p.Object)
		out[i] = p
	}
	return out
}

// FindRelationsByEntity returns relations whose subject or object contains
// keyword, ignoring case.
func (c *Database) FindRelationsByEntity(ctx context.Context, keyword string) ([]queries.FindRelationsByEntityRow, error) {
	return c.Queries.FindRelationsByEntity(ctx, Fold(keyword))
}

// backfillFolds fills the folded columns of rows written before they
// existed.
func (c *Database) backfillFolds(ctx context.Context) (int, error) {
	var updated int
	err := c.WithTx(ctx, func(q *queries.Queries) error {
		rows, err := q.ListUnfoldedRelations(ctx)
		if err != nil {
			return fmt.Errorf("list unfolded relations: %w", err)
		}
		for _, row := range rows {
			if err := q.SetRelationFolds(ctx, queries.SetRelationFoldsParams{
				SubjectFold: Fold(row.Subject),
				ObjectFold:  Fold(row.Object),
				ID:          row.ID,
			}); err != nil {
				return fmt.Errorf("fold relation %d: %w", row.ID, err)
			}
		}
		updated = len(rows)
		return nil
	})
	return updated, err
}
