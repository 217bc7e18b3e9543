package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the source archive.
// Archiving is disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ElasticsearchConfig holds settings for the Elasticsearch document store backend.
type ElasticsearchConfig struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// InferenceConfig holds settings for the question-answering engine.
type InferenceConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// IngestConfig controls how uploads and server-local paths are acquired.
type IngestConfig struct {
	TempDir         string
	PathRoot        string
	MaxUploadBytes  int
	SourceURLExpiry time.Duration
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables and an optional config file.
type AppConfig struct {
	AppHost       string
	Port          string
	ServiceName   string
	StoreBackend  string
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Elasticsearch ElasticsearchConfig
	Inference     InferenceConfig
	Ingest        IngestConfig
	Log           LogConfig
}

const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
	BackendMemory        = "memory"
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return fromViper(newViper())
}

// LoadFile reads configuration from the given file (any format viper understands)
// and lets environment variables override it. Keys use the environment variable
// names, e.g. db_host or DB_HOST.
func LoadFile(path string) (*AppConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("APP_HOST", "localhost:8080")
	v.SetDefault("PORT", "8080")
	v.SetDefault("OTEL_SERVICE_NAME", "tabqa")
	v.SetDefault("STORE_BACKEND", BackendPostgres)

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)

	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("ES_ADDRESSES", "http://localhost:9200")
	v.SetDefault("ES_INDEX", "tabqa-documents")

	v.SetDefault("INFERENCE_ENDPOINT", "http://localhost:8000/question-answering")
	v.SetDefault("INFERENCE_TIMEOUT", 60*time.Second)

	v.SetDefault("INGEST_MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("SOURCE_URL_EXPIRY", 15*time.Minute)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_TIMEZONE", "UTC")

	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *AppConfig {
	return &AppConfig{
		AppHost:      v.GetString("APP_HOST"),
		Port:         v.GetString("PORT"),
		ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Elasticsearch: ElasticsearchConfig{
			Addresses: splitList(v.GetString("ES_ADDRESSES")),
			Index:     v.GetString("ES_INDEX"),
			Username:  v.GetString("ES_USERNAME"),
			Password:  v.GetString("ES_PASSWORD"),
		},
		Inference: InferenceConfig{
			Endpoint: v.GetString("INFERENCE_ENDPOINT"),
			Token:    v.GetString("INFERENCE_TOKEN"),
			Timeout:  v.GetDuration("INFERENCE_TIMEOUT"),
		},
		Ingest: IngestConfig{
			TempDir:         v.GetString("INGEST_TEMP_DIR"),
			PathRoot:        v.GetString("INGEST_PATH_ROOT"),
			MaxUploadBytes:  v.GetInt("INGEST_MAX_UPLOAD_BYTES"),
			SourceURLExpiry: v.GetDuration("SOURCE_URL_EXPIRY"),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("LOG_TIMEZONE"),
		},
	}
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location resolves the log timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
