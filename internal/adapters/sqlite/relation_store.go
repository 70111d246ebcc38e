package sqlite

import (
	"context"
	"strings"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/db"
	"github.com/fr0stylo/relgraph/internal/db/queries"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// RelationStore is the sqlite-backed knowledge base.
type RelationStore struct {
	db      relationDatabase
	closeFn func() error
}

// OpenRelationStore opens the knowledge base at dbPath. The store owns and
// closes the handle.
func OpenRelationStore(dbPath string) (*RelationStore, error) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, err
	}
	return newRelationStore(database, database.Close), nil
}

// NewSharedRelationStore wraps an existing handle. Close does not close it.
func NewSharedRelationStore(shared *db.Database) *RelationStore {
	return newRelationStore(shared, nil)
}

func newRelationStore(database relationDatabase, closeFn func() error) *RelationStore {
	return &RelationStore{db: database, closeFn: closeFn}
}

func (s *RelationStore) InsertRelations(ctx context.Context, triples []relations.Triple) (int, error) {
	n, err := s.db.InsertRelations(ctx, toParams(triples))
	return int(n), err
}

// ReplaceRelations drops everything stored and inserts triples.
func (s *RelationStore) ReplaceRelations(ctx context.Context, triples []relations.Triple) (int, error) {
	n, err := s.db.ReplaceRelations(ctx, toParams(triples))
	return int(n), err
}

func (s *RelationStore) FindRelationsByEntity(ctx context.Context, keyword string) ([]relations.Triple, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	rows, err := s.db.FindRelationsByEntity(ctx, keyword)
	if err != nil {
		return nil, err
	}
	out := make([]relations.Triple, 0, len(rows))
	for _, row := range rows {
		out = append(out, relations.Triple{Subject: row.Subject, Object: row.Object, Label: row.Label})
	}
	return out, nil
}

func (s *RelationStore) ListEntities(ctx context.Context) ([]string, error) {
	return s.db.ListEntities(ctx)
}

func (s *RelationStore) CountRelations(ctx context.Context) (int, error) {
	n, err := s.db.CountRelations(ctx)
	return int(n), err
}

func (s *RelationStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func toParams(triples []relations.Triple) []queries.InsertRelationParams {
	params := make([]queries.InsertRelationParams, 0, len(triples))
	for _, triple := range triples {
		normalized, ok := relations.NormalizeTriple(triple.Subject, triple.Object, triple.Label)
		if !ok {
			continue
		}
		params = append(params, queries.InsertRelationParams{
			Subject: normalized.Subject,
			Object:  normalized.Object,
			Label:   normalized.Label,
		})
	}
	return params
}

var _ ports.RelationStore = (*RelationStore)(nil)
