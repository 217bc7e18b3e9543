package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabqa/docs"
	"tabqa/internal/config"
)

func memoryConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		StoreBackend: config.BackendMemory,
		Inference: config.InferenceConfig{
			// nothing listens on port 0, so queries fail fast
			Endpoint: "http://127.0.0.1:0/question-answering",
			Timeout:  2 * time.Second,
		},
		Ingest: config.IngestConfig{
			TempDir:        t.TempDir(),
			MaxUploadBytes: 1 << 20,
		},
	}
}

func TestOpenRepository(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		repo, closeRepo, err := openRepository(context.Background(), memoryConfig(t), logr.Discard())
		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NoError(t, closeRepo())
		assert.NoError(t, repo.PingContext(context.Background()))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.StoreBackend = "mongodb"

		_, _, err := openRepository(context.Background(), cfg, logr.Discard())
		assert.ErrorContains(t, err, `unsupported store backend "mongodb"`)
	})

	t.Run("postgres without host", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.StoreBackend = config.BackendPostgres

		_, _, err := openRepository(context.Background(), cfg, logr.Discard())
		assert.ErrorContains(t, err, "failed to connect to database")
	})
}

func TestNewApp_RequiresInferenceEndpoint(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Inference.Endpoint = ""

	a, err := newApp(context.Background(), cfg, logr.Discard())
	assert.Nil(t, a)
	assert.ErrorContains(t, err, "failed to initialize inference engine")
}

func TestServer_DocumentLifecycle(t *testing.T) {
	cfg := memoryConfig(t)
	a, err := newApp(context.Background(), cfg, logr.Discard())
	require.NoError(t, err)
	defer a.Close(logr.Discard())

	reg := prometheus.NewRegistry()
	server, err := newServer(cfg, a, reg, reg)
	require.NoError(t, err)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "people.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("name,age\nAlice,30\nBob,25\n"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := server.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var created struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Metadata struct {
			RowCount    int      `json:"row_count"`
			ColumnNames []string `json:"column_names"`
		} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "people.csv", created.Name)
	assert.Equal(t, 2, created.Metadata.RowCount)
	assert.Equal(t, []string{"name", "age"}, created.Metadata.ColumnNames)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(listBody), created.ID)
	assert.Contains(t, string(listBody), `"total":1`)

	qreq := httptest.NewRequest(http.MethodPost, "/documents/"+created.ID+"/query", strings.NewReader(`{"question":"How old is Alice?"}`))
	qreq.Header.Set("Content-Type", "application/json")
	resp, err = server.Test(qreq, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/documents/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(metrics), `http_requests_total{method="POST",path="/documents",status="201"} 1`)
}

func TestServer_SwaggerDocConcurrent(t *testing.T) {
	cfg := memoryConfig(t)
	a, err := newApp(context.Background(), cfg, logr.Discard())
	require.NoError(t, err)
	defer a.Close(logr.Discard())

	reg := prometheus.NewRegistry()
	server, err := newServer(cfg, a, reg, reg)
	require.NoError(t, err)

	hosts := []string{"a.example:8080", "b.example", "c.example:443"}
	var wg sync.WaitGroup
	codes := make([]int, 12)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
			req.Host = hosts[i%len(hosts)]
			req.Header.Set("X-Forwarded-Proto", "https")
			resp, err := server.Test(req, 5000)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Empty(t, docs.SwaggerInfo.Host)
	assert.Empty(t, docs.SwaggerInfo.Schemes)
}
