// Package repository contains data access layer abstractions for documents.
// Implementations live in subpackages (postgres, elastic, memory) inside this directory.
package repository

import "errors"

// ErrNotFound is returned by FindByID when no document has the given id.
// It lets callers tell "no such document" apart from infrastructure failures.
var ErrNotFound = errors.New("document not found")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
