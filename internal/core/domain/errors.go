package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or stored file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input, such as a bad
	// rectangle payload or a page-range spec that selects nothing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates no conversion path exists for an input,
	// or the input bytes cannot be parsed as the declared kind.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrConversionTimeout indicates the external converter exceeded its deadline.
	// It is always reported together with ErrUnsupportedFormat.
	ErrConversionTimeout = errors.New("conversion timed out")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search falls back to full text without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrTranslationUnavailable indicates no translator could handle a request.
	ErrTranslationUnavailable = errors.New("translation unavailable")

	// ErrOCRUnavailable indicates the OCR engine is missing from this build.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrArchiveUnavailable indicates no archive backend is configured.
	ErrArchiveUnavailable = errors.New("archive backend unavailable")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates a request carried no usable credentials.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the presented credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrForbidden indicates the identity lacks the role for an operation.
	ErrForbidden = errors.New("forbidden")
)
