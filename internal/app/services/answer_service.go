package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
	"github.com/fr0stylo/relgraph/internal/observability"
)

// ErrEmptyQuestion is returned when the backend receives no question.
var ErrEmptyQuestion = errors.New("query parameter 'q' is required")

const (
	keywordMaxTokens = 10
	summaryMaxTokens = 150
)

// AnswerService resolves a question to the relations it is about and a
// prose summary of them.
type AnswerService struct {
	store     ports.RelationStore
	model     ports.LanguageModel
	publisher ports.AnswerPublisher
	now       func() time.Time
}

type AnswerOption func(*AnswerService)

// WithLanguageModel enables LLM keyword extraction and summaries.
func WithLanguageModel(model ports.LanguageModel) AnswerOption {
	return func(s *AnswerService) {
		s.model = model
	}
}

// WithAnswerPublisher forwards every answered query to publisher.
func WithAnswerPublisher(publisher ports.AnswerPublisher) AnswerOption {
	return func(s *AnswerService) {
		s.publisher = publisher
	}
}

func NewAnswerService(store ports.RelationStore, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer looks up the entity a question is about and summarizes what the
// knowledge base says about it.
func (s *AnswerService) Answer(ctx context.Context, question string) (relations.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return relations.Result{}, ErrEmptyQuestion
	}

	keyword, err := s.extractKeyword(ctx, question)
	if err != nil {
		return relations.Result{}, err
	}
	ctx = observability.WithKeyword(ctx, keyword)

	found, err := s.retrieve(ctx, keyword)
	if err != nil {
		return relations.Result{}, err
	}

	summary := fmt.Sprintf("I couldn't find any specific relationships for '%s' in the document.", keyword)
	if len(found) > 0 {
		summary = s.summarize(ctx, keyword, found)
	}

	s.publish(ctx, ports.QueryAnswered{
		Question:  question,
		Keyword:   keyword,
		Relations: len(found),
		Summary:   summary,
		At:        s.now().UTC(),
	})
	return relations.Answer(summary, found), nil
}

func (s *AnswerService) extractKeyword(ctx context.Context, question string) (string, error) {
	ctx, span := observability.StartStepSpan(ctx, "keyword")
	defer span.End()

	if s.model != nil {
		prompt := keywordPrompt(question)
		out, err := s.model.Generate(ctx, prompt, keywordMaxTokens)
		if err == nil {
			if keyword := strings.ToLower(strings.TrimSpace(out)); keyword != "" {
				slog.InfoContext(ctx, "keyword_extracted", "keyword", keyword, "source", "llm")
				return keyword, nil
			}
		} else {
			span.RecordError(err)
			slog.WarnContext(ctx, "keyword_llm_failed", "error", err)
		}
	}

	entities, err := s.store.ListEntities(ctx)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("list entities: %w", err)
	}
	keyword := matchEntity(question, entities)
	slog.InfoContext(ctx, "keyword_extracted", "keyword", keyword, "source", "entities")
	return keyword, nil
}

func keywordPrompt(question string) string {
	return "Extract the primary company or person's name from this question: \"" + question + "\" Name:"
}

// matchEntity picks the longest known entity mentioned in question, or the
// whole lowercased question when none is.
func matchEntity(question string, entities []string) string {
	lowered := strings.ToLower(question)
	best := ""
	for _, entity := range entities {
		candidate := strings.ToLower(strings.TrimSpace(entity))
		if candidate == "" || len(candidate) <= len(best) {
			continue
		}
		if strings.Contains(lowered, candidate) {
			best = candidate
		}
	}
	if best == "" {
		return lowered
	}
	return best
}

func (s *AnswerService) retrieve(ctx context.Context, keyword string) ([]relations.Triple, error) {
	ctx, span := observability.StartStepSpan(ctx, "retrieve")
	defer span.End()

	found, err := s.store.FindRelationsByEntity(ctx, keyword)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find relations for %q: %w", keyword, err)
	}
	return relations.Dedupe(found), nil
}

func (s *AnswerService) summarize(ctx context.Context, keyword string, found []relations.Triple) string {
	ctx, span := observability.StartStepSpan(ctx, "summarize")
	defer span.End()

	facts := FactList(keyword, found)
	title := cases.Title(language.Und).String(keyword)
	if s.model == nil {
		return title + ":\n" + facts
	}

	prompt := "Write a brief, professional summary based on the following points about " + title + ".\n\n" +
		"Key Points:\n" + facts + "\n\nSummary Paragraph:\n"
	out, err := s.model.Generate(ctx, prompt, summaryMaxTokens)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			span.RecordError(err)
		}
		slog.WarnContext(ctx, "summary_llm_failed", "error", err)
		return title + ":\n" + facts
	}
	return strings.TrimSpace(out)
}

// FactList groups triples by label, listing for each label the entities on
// the other side of the keyword, e.g. "- As a employer: Acme, Initech".
// Labels keep first-seen order; entities are unique and sorted.
func FactList(keyword string, found []relations.Triple) string {
	fold := cases.Fold()
	keyword = fold.String(keyword)
	var labels []string
	grouped := make(map[string]map[string]struct{})
	for _, triple := range found {
		other := triple.Subject
		if strings.Contains(fold.String(triple.Subject), keyword) {
			other = triple.Object
		}
		entities, ok := grouped[triple.Label]
		if !ok {
			entities = make(map[string]struct{})
			grouped[triple.Label] = entities
			labels = append(labels, triple.Label)
		}
		entities[other] = struct{}{}
	}

	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		names := make([]string, 0, len(grouped[label]))
		for name := range grouped[label] {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "- As a "+label+": "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

func (s *AnswerService) publish(ctx context.Context, event ports.QueryAnswered) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnswered(ctx, event); err != nil {
		slog.WarnContext(ctx, "query_event_publish_failed", "keyword", event.Keyword, "error", err)
	}
}
