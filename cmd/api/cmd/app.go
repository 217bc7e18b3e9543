package cmd

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"tabqa/internal/config"
	"tabqa/internal/database"
	"tabqa/internal/database/migration"
	"tabqa/internal/inference"
	"tabqa/internal/repository"
	"tabqa/internal/repository/elastic"
	"tabqa/internal/repository/memory"
	"tabqa/internal/repository/postgres"
	"tabqa/internal/service"
	"tabqa/internal/storage"
)

// app holds the long-lived handles shared by the serve and mcp commands.
type app struct {
	repo    repository.DocumentRepository
	docs    service.DocumentService
	queries service.QueryService
	closers []func() error
}

// Close releases handles in reverse order of acquisition.
func (a *app) Close(log logr.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error(err, "shutdown_close_failed")
		}
	}
}

func newApp(ctx context.Context, cfg *config.AppConfig, log logr.Logger) (*app, error) {
	a := &app{}

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	a.closers = append(a.closers, closeRepo)

	var store storage.Storage
	if cfg.MinIO.Endpoint != "" {
		store, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			a.Close(log)
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		log.Info("source_archive_enabled", "endpoint", cfg.MinIO.Endpoint, "bucket", cfg.MinIO.Bucket)
	}

	engine, err := inference.NewHTTPEngine(inference.Config{
		Endpoint: cfg.Inference.Endpoint,
		Token:    cfg.Inference.Token,
		Timeout:  cfg.Inference.Timeout,
	})
	if err != nil {
		a.Close(log)
		return nil, fmt.Errorf("failed to initialize inference engine: %w", err)
	}
	a.closers = append(a.closers, engine.Close)

	a.docs = service.NewDocumentService(store, repo, service.Options{
		TempDir:         cfg.Ingest.TempDir,
		PathRoot:        cfg.Ingest.PathRoot,
		SourceURLExpiry: cfg.Ingest.SourceURLExpiry,
		Logger:          log,
	})
	a.queries = service.NewQueryService(repo, engine, service.WholeDocument{})
	return a, nil
}

// openRepository connects the document store selected by STORE_BACKEND.
func openRepository(ctx context.Context, cfg *config.AppConfig, log logr.Logger) (repository.DocumentRepository, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("document_store_ready", "backend", config.BackendPostgres, "db_host", cfg.Database.Host)
		return postgres.NewDocumentPostgres(db), db.Close, nil

	case config.BackendElasticsearch:
		repo, err := elastic.New(elastic.Config{
			Addresses: cfg.Elasticsearch.Addresses,
			Index:     cfg.Elasticsearch.Index,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		if err := repo.EnsureIndex(ctx); err != nil {
			return nil, nil, err
		}
		log.Info("document_store_ready", "backend", config.BackendElasticsearch, "index", cfg.Elasticsearch.Index)
		return repo, noopClose, nil

	case config.BackendMemory:
		log.Info("document_store_ready", "backend", config.BackendMemory)
		return memory.NewDocumentMemory(), noopClose, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func noopClose() error { return nil }
