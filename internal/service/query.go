package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tabqa/internal/inference"
	"tabqa/internal/model"
	"tabqa/internal/repository"
)

// ContextSelector picks the passage of a document handed to the engine.
type ContextSelector interface {
	Select(doc *model.Document) string
}

// WholeDocument uses the full rendered text as context.
type WholeDocument struct{}

func (WholeDocument) Select(doc *model.Document) string { return doc.Text }

// QueryService answers natural-language questions against stored documents.
type QueryService interface {
	Answer(ctx context.Context, id, question string) (*model.Answer, error)
}

type queryService struct {
	repo     repository.DocumentRepository
	engine   inference.Engine
	selector ContextSelector
}

// NewQueryService constructs a QueryService. A nil selector means WholeDocument.
func NewQueryService(repo repository.DocumentRepository, engine inference.Engine, selector ContextSelector) QueryService {
	if selector == nil {
		selector = WholeDocument{}
	}
	return &queryService{repo: repo, engine: engine, selector: selector}
}

// Answer is read-only: the document is looked up before the engine is
// consulted, so a missing ID never reaches the model.
func (s *queryService) Answer(ctx context.Context, id, question string) (ans *model.Answer, err error) {
	ctx, span := tracer.Start(ctx, "QueryService.Answer", trace.WithAttributes(attribute.String("document.id", id)))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrQuestionRequired
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find document", err)
	}

	ans, err = s.engine.Answer(ctx, question, s.selector.Select(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	span.SetAttributes(attribute.Float64("answer.score", ans.Score))
	return ans, nil
}
