// Package memory keeps documents in process memory. It backs single-node
// deployments, the MCP server when no database is configured, and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tabqa/internal/model"
	"tabqa/internal/repository"
)

// DocumentMemory is an in-memory implementation of repository.DocumentRepository.
// Records are copied on the way in and out so callers never share state.
type DocumentMemory struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// NewDocumentMemory creates an empty store.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]model.Document)}
}

func clone(d model.Document) model.Document {
	d.Metadata.ColumnNames = append([]string(nil), d.Metadata.ColumnNames...)
	return d
}

func (m *DocumentMemory) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[doc.ID]; ok {
		return nil, fmt.Errorf("document %s already exists", doc.ID)
	}
	m.docs[doc.ID] = clone(*doc)

	out := clone(*doc)
	return &out, nil
}

func (m *DocumentMemory) FindByID(ctx context.Context, id string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := clone(d)
	return &out, nil
}

// List orders by creation time, newest first, with the ID as tie-breaker.
func (m *DocumentMemory) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.DocumentSummary], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	all := make([]model.Document, 0, len(m.docs))
	for _, d := range m.docs {
		all = append(all, d)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := min(max(pq.Offset, 0), len(all))
	end := len(all)
	if pq.Limit > 0 {
		end = min(start+pq.Limit, len(all))
	}

	items := make([]model.DocumentSummary, 0, end-start)
	for _, d := range all[start:end] {
		items = append(items, d.Summary())
	}
	return &repository.PageResult[model.DocumentSummary]{Items: items, Total: len(all)}, nil
}

func (m *DocumentMemory) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	return true, nil
}

func (m *DocumentMemory) PingContext(ctx context.Context) error {
	return ctx.Err()
}
