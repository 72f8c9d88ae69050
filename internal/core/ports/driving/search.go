package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a full-text query, re-ranked semantically when requested
	// and available.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// SemanticSearch ranks documents by embedding similarity, falling back
	// to full text when embeddings are unavailable or fail.
	SemanticSearch(ctx context.Context, query string, limit int) (*domain.SearchResponse, error)
}
