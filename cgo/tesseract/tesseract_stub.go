//go:build !cgo

package tesseract

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Engine recognises text with libtesseract.
// This is a stub for builds without CGO.
type Engine struct{}

// New reports that native OCR is not compiled in.
func New(_ int) (*Engine, error) {
	return nil, domain.ErrOCRUnavailable
}

// Recognize is not implemented without CGO.
func (e *Engine) Recognize(_ context.Context, _ []byte, _ []string) (string, error) {
	return "", domain.ErrOCRUnavailable
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}
