package repository

import (
	"context"

	"tabqa/internal/model"
)

// DocumentRepository is the document store, keyed solely by document ID.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create stores a fully populated document in a single write.
	// Either the whole record becomes visible or nothing does.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of document summaries, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.DocumentSummary], error)

	// Delete removes a document by ID and reports whether a record was removed.
	// Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// PingContext checks connectivity with the backing store.
	PingContext(ctx context.Context) error
}
