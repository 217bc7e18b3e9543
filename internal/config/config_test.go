package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORE_BACKEND", "Elasticsearch")
	t.Setenv("ES_ADDRESSES", "http://es-1:9200, http://es-2:9200,")
	t.Setenv("INFERENCE_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendElasticsearch, cfg.StoreBackend)
	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, 5*time.Second, cfg.Inference.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PORT", "STORE_BACKEND", "INGEST_MAX_UPLOAD_BYTES", "MINIO_USE_SSL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 32<<20, cfg.Ingest.MaxUploadBytes)
	assert.Equal(t, 15*time.Minute, cfg.Ingest.SourceURLExpiry)
	assert.False(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "invalid")
	t.Setenv("MINIO_USE_SSL", "invalid")

	cfg := Load()

	assert.Equal(t, 0, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.MinIO.UseSSL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabqa.yaml")
	content := "db_host: file-host\ndb_name: tabqa\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-host", cfg.Database.Host)
	assert.Equal(t, "tabqa", cfg.Database.Name)
	// environment wins over the file
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, LogConfig{}.Location())
	assert.Equal(t, time.UTC, LogConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, time.Local, LogConfig{Timezone: "Local"}.Location())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,,b"))
}
