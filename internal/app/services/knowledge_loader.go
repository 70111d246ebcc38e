package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// ReadRelations decodes a JSON array of [subject, object, label] triples,
// dropping blank and duplicate entries.
func ReadRelations(r io.Reader) ([]relations.Triple, error) {
	var raw []relations.Triple
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode relations: %w", err)
	}
	out := make([]relations.Triple, 0, len(raw))
	for _, triple := range raw {
		normalized, ok := relations.NormalizeTriple(triple.Subject, triple.Object, triple.Label)
		if !ok {
			continue
		}
		out = append(out, normalized)
	}
	return relations.Dedupe(out), nil
}

// LoadRelationsFile seeds store from a relations file. A missing file is
// reported with an error wrapping os.ErrNotExist.
func LoadRelationsFile(ctx context.Context, store ports.RelationStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open relations file: %w", err)
	}
	defer f.Close()

	triples, err := ReadRelations(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	inserted, err := store.InsertRelations(ctx, triples)
	if err != nil {
		return 0, fmt.Errorf("insert relations: %w", err)
	}
	return inserted, nil
}
