package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the document_vectors table.
// Search is an exact scan; archives of this kind hold thousands of documents,
// not millions.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Add inserts or replaces a document's vector.
func (v *vectorIndex) Add(ctx context.Context, docID int64, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for document %d", docID)
	}
	return v.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document_vectors (document_id, dims, embedding) VALUES (?, ?, ?)
			ON CONFLICT(document_id) DO UPDATE SET dims = excluded.dims, embedding = excluded.embedding
		`, docID, len(embedding), float32SliceToBytes(embedding))
		return mapConstraint(err, "storing vector")
	})
}

// Delete removes a document's vector.
func (v *vectorIndex) Delete(ctx context.Context, docID int64) error {
	return v.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM document_vectors WHERE document_id = ?", docID)
		if err != nil {
			return fmt.Errorf("deleting vector: %w", err)
		}
		return nil
	})
}

// Search returns the k most similar documents. Vectors whose dimension
// differs from the query (left over from a previous model) are ignored.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}
	rows, err := v.store.db.QueryContext(ctx,
		"SELECT document_id, embedding FROM document_vectors WHERE dims = ?", len(query))
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		hits = append(hits, driven.VectorHit{
			DocumentID: id,
			Similarity: cosine(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close is a no-op; the database belongs to the Store.
func (v *vectorIndex) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
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
