package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// IngestService turns uploads into indexed documents.
type IngestService interface {
	// Ingest canonicalises data, extracts its text and stores the document.
	// Only an unsupported or timed-out conversion fails the ingest.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error)

	// Reingest re-runs text extraction on a stored document and overwrites
	// its text fields.
	Reingest(ctx context.Context, id int64) (*domain.Document, error)
}
