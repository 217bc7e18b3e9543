package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tabqa/internal/logging"
	"tabqa/internal/model"
	"tabqa/internal/normalizer"
	"tabqa/internal/repository"
	"tabqa/internal/storage"
)

var tracer = otel.Tracer("tabqa/internal/service")

const (
	defaultListLimit       = 10
	maxListLimit           = 100
	defaultSourceURLExpiry = 15 * time.Minute
)

// IngestRequest carries exactly one input: an inline upload (Reader plus
// Filename) or a path readable by the server.
type IngestRequest struct {
	Reader     io.Reader
	Filename   string
	ServerPath string
}

// Options configures a DocumentService.
type Options struct {
	// TempDir holds transient copies of inline uploads. Empty means os.TempDir().
	TempDir string
	// PathRoot, when set, confines server-path ingestion to this directory.
	PathRoot string
	// SourceURLExpiry is the lifetime of presigned source URLs.
	SourceURLExpiry time.Duration
	Logger          logr.Logger
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.DocumentSummary `json:"data"`
	Total int                     `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Ingest normalizes one table and commits it as a new document.
	// Nothing is stored when any step fails.
	Ingest(ctx context.Context, req IngestRequest) (*model.Document, error)

	// List returns document summaries using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// OpenSource streams the archived original upload of a document.
	OpenSource(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// SourceURL returns a presigned download URL for the archived original.
	SourceURL(ctx context.Context, id string) (string, error)
}

// documentService is a concrete implementation of DocumentService.
// store is nil when archiving is disabled.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	opts  Options
	log   logr.Logger
}

// NewDocumentService constructs a new DocumentService. store may be nil.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, opts Options) DocumentService {
	if opts.SourceURLExpiry <= 0 {
		opts.SourceURLExpiry = defaultSourceURLExpiry
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logging.Logger()
	}
	return &documentService{store: store, repo: repo, opts: opts, log: log.WithName("documents")}
}

func (s *documentService) Ingest(ctx context.Context, req IngestRequest) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Ingest")
	defer func() { endSpan(span, err) }()

	inline := req.Reader != nil
	byPath := req.ServerPath != ""
	switch {
	case inline && byPath:
		return nil, fmt.Errorf("%w: provide either a file upload or a server path, not both", ErrBadRequest)
	case !inline && !byPath:
		return nil, ErrFileRequired
	case inline && strings.TrimSpace(req.Filename) == "":
		return nil, fmt.Errorf("%w: filename is required for uploads", ErrBadRequest)
	}

	var (
		src  *os.File
		name string
	)
	if inline {
		name = filepath.Base(req.Filename)
		src, err = s.spool(req.Reader)
		if err != nil {
			return nil, err
		}
		defer s.release(src, true)
	} else {
		src, name, err = s.openPath(req.ServerPath)
		if err != nil {
			return nil, err
		}
		defer s.release(src, false)
	}
	span.SetAttributes(attribute.String("document.name", name))

	res, err := normalizer.Normalize(src, name)
	if err != nil {
		return nil, err
	}

	doc = &model.Document{
		ID:       uuid.NewString(),
		Name:     name,
		Text:     res.Text,
		Metadata: res.Metadata,
	}
	span.SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.Int("document.row_count", res.Metadata.RowCount),
	)

	if s.store != nil {
		key, err := s.archive(ctx, src, doc, res.Format)
		if err != nil {
			return nil, err
		}
		doc.SourceKey = key
	}

	doc.CreatedAt = time.Now().UTC()
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if doc.SourceKey != "" {
			// Rollback: delete the archived object
			if delErr := s.store.Delete(ctx, doc.SourceKey); delErr != nil {
				return nil, fmt.Errorf("%w: save document: %v; rollback delete failed: %v", ErrStorageFailure, err, delErr)
			}
		}
		return nil, storageFailure("save document", err)
	}

	s.log.V(1).Info("document_ingested", "request_id", logging.RequestID(ctx), "id", stored.ID, "name", stored.Name, "row_count", stored.Metadata.RowCount)
	return stored, nil
}

// spool copies an inline upload into a transient file so the normalizer and
// the archive can both read it.
func (s *documentService) spool(r io.Reader) (*os.File, error) {
	f, err := os.CreateTemp(s.opts.TempDir, "tabqa-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create transient file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		s.release(f, true)
		return nil, fmt.Errorf("%w: read upload: %v", ErrBadRequest, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.release(f, true)
		return nil, fmt.Errorf("rewind transient file: %w", err)
	}
	return f, nil
}

func (s *documentService) release(f *os.File, remove bool) {
	if err := f.Close(); err != nil {
		s.log.Error(err, "close_input_failed", "file", f.Name())
	}
	if !remove {
		return
	}
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error(err, "remove_transient_file_failed", "file", f.Name())
	}
}

func (s *documentService) openPath(p string) (*os.File, string, error) {
	resolved, err := s.resolvePath(p)
	if err != nil {
		return nil, "", err
	}

	fi, err := os.Stat(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrNotFound, p, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, "", fmt.Errorf("%w: %s is not a regular file", ErrNotFound, p)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrNotFound, p, err)
	}
	return f, filepath.Base(resolved), nil
}

// resolvePath cleans p and, when a root is configured, resolves relative
// paths against it and rejects anything outside it.
func (s *documentService) resolvePath(p string) (string, error) {
	clean := filepath.Clean(p)
	if s.opts.PathRoot == "" {
		return clean, nil
	}

	root, err := filepath.Abs(s.opts.PathRoot)
	if err != nil {
		return "", fmt.Errorf("resolve ingest root: %w", err)
	}
	target := clean
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q is outside the ingest root", ErrBadRequest, p)
	}
	return target, nil
}

func (s *documentService) archive(ctx context.Context, src *os.File, doc *model.Document, format normalizer.Format) (string, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind input: %w", err)
	}
	size := int64(-1)
	if fi, err := src.Stat(); err == nil {
		size = fi.Size()
	}

	key := storage.SourceKey(doc.ID, doc.Name)
	_, err := s.store.Put(ctx, key, src, storage.PutObjectOptions{
		Size:        size,
		ContentType: format.ContentType(),
		Metadata: map[string]string{
			"original-filename": doc.Name,
		},
	})
	if err != nil {
		return "", storageFailure("archive source", err)
	}
	return key, nil
}

// List returns paginated document summaries without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, storageFailure("list documents", err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find document", err)
	}
	return doc, nil
}

// Delete removes the record, then its archived source. A failure to remove
// the archived object only leaves an orphan behind, so it is logged.
func (s *documentService) Delete(ctx context.Context, id string) (deleted bool, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.String("document.id", id)))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return false, ErrIDRequired
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, storageFailure("find document", err)
	}

	deleted, err = s.repo.Delete(ctx, id)
	if err != nil {
		return false, storageFailure("delete document", err)
	}

	if deleted && doc.SourceKey != "" && s.store != nil {
		if err := s.store.Delete(ctx, doc.SourceKey); err != nil {
			s.log.Error(err, "delete_source_failed", "request_id", logging.RequestID(ctx), "id", id, "key", doc.SourceKey)
		}
	}
	return deleted, nil
}

func (s *documentService) sourceKey(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.SourceKey == "" || s.store == nil {
		return "", ErrNoSource
	}
	return doc.SourceKey, nil
}

func (s *documentService) OpenSource(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	key, err := s.sourceKey(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, storage.ObjectInfo{}, storageFailure("open source", err)
	}
	return rc, info, nil
}

func (s *documentService) SourceURL(ctx context.Context, id string) (string, error) {
	key, err := s.sourceKey(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, key, s.opts.SourceURLExpiry)
	if err != nil {
		return "", storageFailure("presign source", err)
	}
	return u, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
