package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// Artifact is a derived file produced from a document.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// RedactionService produces redacted copies. Sources are never modified.
type RedactionService interface {
	// Redact applies req to data and returns the new artifact.
	Redact(ctx context.Context, data []byte, filename string, req domain.RedactionRequest) (*Artifact, error)

	// RedactDocument applies req to a stored document's canonical PDF.
	RedactDocument(ctx context.Context, id int64, req domain.RedactionRequest) (*Artifact, error)
}

// ExportService extracts page subsets of stored documents.
type ExportService interface {
	// ExtractPages builds a new PDF from the pages selected by spec, e.g. "1-3,5".
	ExtractPages(ctx context.Context, id int64, spec string) (*Artifact, error)
}
