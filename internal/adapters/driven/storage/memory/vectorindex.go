package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
type VectorIndex struct {
	mu      sync.RWMutex
	vectors map[int64][]float32
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{vectors: make(map[int64][]float32)}
}

// Add inserts or replaces a vector.
func (v *VectorIndex) Add(_ context.Context, docID int64, embedding []float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vectors[docID] = append([]float32(nil), embedding...)
	return nil
}

// Delete removes a vector.
func (v *VectorIndex) Delete(_ context.Context, docID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.vectors, docID)
	return nil
}

// Has reports whether a vector is stored for docID.
func (v *VectorIndex) Has(docID int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.vectors[docID]
	return ok
}

// Search returns the k most similar vectors by cosine similarity.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	hits := make([]driven.VectorHit, 0, len(v.vectors))
	for id, vec := range v.vectors {
		if len(vec) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{DocumentID: id, Similarity: cosine(query, vec)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
