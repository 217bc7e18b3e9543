// Package inference talks to the extractive question-answering model that
// resolves queries against a document's text.
package inference

import (
	"context"

	"tabqa/internal/model"
)

// Engine answers a question from a context string.
// Implementations must be safe for concurrent use; one Engine is shared by
// every request for the lifetime of the process.
type Engine interface {
	Answer(ctx context.Context, question, passage string) (*model.Answer, error)
	Close() error
}
