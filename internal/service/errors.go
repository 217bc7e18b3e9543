package service

import (
	"errors"
	"fmt"

	"tabqa/internal/normalizer"
)

// Error kinds surfaced by the services. Callers match them with errors.Is;
// the wrapped cause carries the detail.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("document not found")
	ErrInvalidFormat    = normalizer.ErrInvalidFormat
	ErrStorageFailure   = errors.New("storage failure")
	ErrInferenceFailure = errors.New("inference failure")
)

// Specific bad requests, so the transport can report a precise code.
var (
	ErrIDRequired       = fmt.Errorf("%w: id is required", ErrBadRequest)
	ErrFileRequired     = fmt.Errorf("%w: a file upload or a server path is required", ErrBadRequest)
	ErrQuestionRequired = fmt.Errorf("%w: question is required", ErrBadRequest)
)

// ErrNoSource is returned when a document has no archived original.
var ErrNoSource = fmt.Errorf("%w: no archived source for document", ErrNotFound)

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
