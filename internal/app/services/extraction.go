package services

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
	"github.com/fr0stylo/relgraph/pkg/rebel"
)

const extractionMaxTokens = 256

const extractionPrompt = `Extract the relations stated in the sentence below as linearized triplets.
Write each fact as "<triplet> head entity <subj> tail entity <obj> relation" and nothing else.

Sentence: `

// Extractor turns sentences into relation triples with a language model
// prompted for REBEL-style output.
type Extractor struct {
	model       ports.LanguageModel
	parallelism int
}

func NewExtractor(model ports.LanguageModel, parallelism int) *Extractor {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Extractor{model: model, parallelism: parallelism}
}

// ExtractionStats counts what one extraction run did.
type ExtractionStats struct {
	Sentences int
	Failed    int
	Triples   int
}

// Extract runs every sentence through the model. A sentence the model fails
// on is logged and skipped. The result is deduplicated and keeps sentence
// order.
func (e *Extractor) Extract(ctx context.Context, sentences []string) ([]relations.Triple, ExtractionStats, error) {
	perSentence := make([][]relations.Triple, len(sentences))
	var (
		mu     sync.Mutex
		failed int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, sentence := range sentences {
		g.Go(func() error {
			out, err := e.model.Generate(gCtx, extractionPrompt+sentence, extractionMaxTokens)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				slog.WarnContext(gCtx, "sentence_extraction_failed", "sentence", truncate(sentence, 50), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			perSentence[i] = toTriples(rebel.ParseTriplets(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ExtractionStats{}, err
	}

	var all []relations.Triple
	for _, triples := range perSentence {
		all = append(all, triples...)
	}
	all = relations.Dedupe(all)
	return all, ExtractionStats{Sentences: len(sentences), Failed: failed, Triples: len(all)}, nil
}

func toTriples(triplets []rebel.Triplet) []relations.Triple {
	out := make([]relations.Triple, 0, len(triplets))
	for _, t := range triplets {
		if triple, ok := relations.NormalizeTriple(t.Subject, t.Object, t.Relation); ok {
			out = append(out, triple)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
