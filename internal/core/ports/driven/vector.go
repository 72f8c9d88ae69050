package driven

import "context"

// VectorIndex stores one embedding per document for similarity search.
type VectorIndex interface {
	// Add inserts or replaces the vector for a document.
	Add(ctx context.Context, docID int64, embedding []float32) error

	// Delete removes a document's vector. Missing vectors are not an error.
	Delete(ctx context.Context, docID int64) error

	// Search finds the k nearest documents to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// DocumentID is the matched document.
	DocumentID int64

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
