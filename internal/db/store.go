package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fr0stylo/relgraph/internal/db/queries"
)

// InsertRelations stores every relation in one transaction and returns how
// many were new. Relations already present are skipped.
func (c *Database) InsertRelations(ctx context.Context, params []queries.InsertRelationParams) (int64, error) {
	params = foldParams(params)
	var inserted int64
	err := c.WithTx(ctx, func(q *queries.Queries) error {
		for _, p := range params {
			n, err := q.InsertRelation(ctx, p)
			if err != nil {
				return fmt.Errorf("insert relation %q/%q/%q: %w", p.Subject, p.Label, p.Object, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceRelations swaps the whole knowledge base for params.
func (c *Database) ReplaceRelations(ctx context.Context, params []queries.InsertRelationParams) (int64, error) {
	params = foldParams(params)
	var inserted int64
	err := c.WithTx(ctx, func(q *queries.Queries) error {
		if _, err := q.DeleteRelations(ctx); err != nil {
			return fmt.Errorf("delete relations: %w", err)
		}
		for _, p := range params {
			n, err := q.InsertRelation(ctx, p)
			if err != nil {
				return fmt.Errorf("insert relation %q/%q/%q: %w", p.Subject, p.Label, p.Object, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// WithTx runs a function within a transaction.
func (c *Database) WithTx(ctx context.Context, fn func(*queries.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(queries.New(newInstrumentedDBTX(tx, c.tracker))); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}
	return tx.Commit()
}
