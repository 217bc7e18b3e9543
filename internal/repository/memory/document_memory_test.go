package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tabqa/internal/model"
	"tabqa/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMemory_CreateAndFind(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	doc := &model.Document{
		ID:       "doc-1",
		Name:     "a.csv",
		Text:     "text",
		Metadata: model.Metadata{RowCount: 1, ColumnNames: []string{"x", "y"}},
	}
	_, err := repo.Create(ctx, doc)
	require.NoError(t, err)

	// mutating the caller's copy does not leak into the store
	doc.Metadata.ColumnNames[0] = "changed"

	got, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got.Metadata.ColumnNames)

	_, err = repo.Create(ctx, &model.Document{ID: "doc-1"})
	assert.Error(t, err)
}

func TestDocumentMemory_FindByID_NotFound(t *testing.T) {
	repo := NewDocumentMemory()

	doc, err := repo.FindByID(context.Background(), "missing")

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentMemory_List(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := repo.Create(ctx, &model.Document{
			ID:        fmt.Sprintf("doc-%d", i),
			Name:      fmt.Sprintf("f%d.csv", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		pq    repository.PageQuery
		want  []string
		total int
	}{
		{name: "first page", pq: repository.PageQuery{Limit: 2}, want: []string{"doc-4", "doc-3"}, total: 5},
		{name: "second page", pq: repository.PageQuery{Limit: 2, Offset: 2}, want: []string{"doc-2", "doc-1"}, total: 5},
		{name: "past the end", pq: repository.PageQuery{Limit: 2, Offset: 10}, want: []string{}, total: 5},
		{name: "no limit", pq: repository.PageQuery{}, want: []string{"doc-4", "doc-3", "doc-2", "doc-1", "doc-0"}, total: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.pq)
			require.NoError(t, err)

			ids := make([]string, 0, len(res.Items))
			for _, s := range res.Items {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, tt.total, res.Total)
		})
	}
}

func TestDocumentMemory_Delete(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Document{ID: "doc-1"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.FindByID(ctx, "doc-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentMemory_Concurrent(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i)
			_, err := repo.Create(ctx, &model.Document{ID: id, Text: id})
			assert.NoError(t, err)
			_, _ = repo.List(ctx, repository.PageQuery{Limit: 10})
		}(i)
	}
	wg.Wait()

	res, err := repo.List(ctx, repository.PageQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Total)

	for i := range 50 {
		id := fmt.Sprintf("doc-%d", i)
		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.Text)
	}
}

func TestDocumentMemory_CanceledContext(t *testing.T) {
	repo := NewDocumentMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, &model.Document{ID: "doc-1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.PingContext(ctx), context.Canceled)
}
