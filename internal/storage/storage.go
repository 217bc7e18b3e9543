// Package storage archives the original bytes of ingested tables in an
// S3-compatible object store, so a document can be traced back to its upload.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// SourcePrefix is the key prefix under which uploads are archived.
const SourcePrefix = "sources/"

// SourceKey builds the archive key for a document: the document ID plus the
// lower-cased extension of the original file name.
func SourceKey(id, name string) string {
	return SourcePrefix + id + strings.ToLower(path.Ext(name))
}

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
// Methods use context and streaming readers.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
