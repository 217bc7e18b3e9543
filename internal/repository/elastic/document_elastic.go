// Package elastic stores documents in an Elasticsearch index, one JSON
// document per upload keyed by its ID.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tabqa/internal/model"
	"tabqa/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// DocumentElastic is an Elasticsearch implementation of repository.DocumentRepository.
type DocumentElastic struct {
	es    *elasticsearch.Client
	index string
}

var _ repository.DocumentRepository = (*DocumentElastic)(nil)

// New creates a new Elasticsearch-backed document repository.
func New(cfg Config) (*DocumentElastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &DocumentElastic{es: es, index: cfg.Index}, nil
}

// indexMapping keeps the rendered text out of the inverted index; lookups
// are by id and listing sorts on created_at.
const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"name": { "type": "keyword" },
			"text": { "type": "text", "index": false },
			"metadata": {
				"properties": {
					"row_count": { "type": "integer" },
					"column_names": { "type": "keyword" }
				}
			},
			"source_key": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (r *DocumentElastic) EnsureIndex(ctx context.Context) error {
	res, err := r.es.Indices.Exists([]string{r.index}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = r.es.Indices.Create(
		r.index,
		r.es.Indices.Create.WithContext(ctx),
		r.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// Create indexes the document with op_type=create, so an existing ID is
// rejected instead of overwritten. The call waits for the refresh so the
// document is listable once Create returns.
func (r *DocumentElastic) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	stored := *doc
	if stored.Metadata.ColumnNames == nil {
		stored.Metadata.ColumnNames = []string{}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := r.es.Create(
		r.index,
		doc.ID,
		bytes.NewReader(data),
		r.es.Create.WithContext(ctx),
		r.es.Create.WithRefresh("wait_for"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error indexing document (status %d): %s", res.StatusCode, res.String())
	}
	return &stored, nil
}

type getResponse struct {
	Found  bool           `json:"found"`
	Source model.Document `json:"_source"`
}

// FindByID retrieves a document by ID.
func (r *DocumentElastic) FindByID(ctx context.Context, id string) (*model.Document, error) {
	res, err := r.es.Get(r.index, id, r.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, repository.ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !gr.Found {
		return nil, repository.ErrNotFound
	}
	return &gr.Source, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source model.DocumentSummary `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// List returns document summaries newest first with from/size paging.
func (r *DocumentElastic) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.DocumentSummary], error) {
	query := map[string]any{
		"query":            map[string]any{"match_all": map[string]any{}},
		"_source":          []string{"id", "name"},
		"sort":             []any{map[string]any{"created_at": "desc"}, map[string]any{"id": "desc"}},
		"from":             pq.Offset,
		"size":             pq.Limit,
		"track_total_hits": true,
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]model.DocumentSummary, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		items[i] = hit.Source
	}
	return &repository.PageResult[model.DocumentSummary]{
		Items: items,
		Total: sr.Hits.Total.Value,
	}, nil
}

// Delete removes a document by ID. A 404 from the cluster means there was
// nothing to remove.
func (r *DocumentElastic) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.es.Delete(
		r.index,
		id,
		r.es.Delete.WithContext(ctx),
		r.es.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return false, fmt.Errorf("delete failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("delete error: %s", res.String())
	}
	return true, nil
}

// PingContext checks if Elasticsearch is available.
func (r *DocumentElastic) PingContext(ctx context.Context) error {
	res, err := r.es.Ping(r.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.String())
	}
	return nil
}
