package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorIndex_SearchOrdersBySimilarity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := store.VectorIndex()

	a := insertTestDocument(t, store, "a.pdf", "", "")
	b := insertTestDocument(t, store, "b.pdf", "", "")
	c := insertTestDocument(t, store, "c.pdf", "", "")
	require.NoError(t, idx.Add(ctx, a, []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, b, []float32{0.7, 0.7, 0}))
	require.NoError(t, idx.Add(ctx, c, []float32{0, 0, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, a, hits[0].DocumentID)
	assert.Equal(t, b, hits[1].DocumentID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestVectorIndex_AddReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := store.VectorIndex()
	a := insertTestDocument(t, store, "a.pdf", "", "")

	require.NoError(t, idx.Add(ctx, a, []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, a, []float32{0, 1}))

	hits, err := idx.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestVectorIndex_SkipsOtherDimensions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := store.VectorIndex()
	a := insertTestDocument(t, store, "a.pdf", "", "")
	b := insertTestDocument(t, store, "b.pdf", "", "")
	require.NoError(t, idx.Add(ctx, a, []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, b, []float32{1, 0, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a, hits[0].DocumentID)
}

func TestVectorIndex_DeleteAndEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := store.VectorIndex()
	a := insertTestDocument(t, store, "a.pdf", "", "")
	require.NoError(t, idx.Add(ctx, a, []float32{1}))

	require.NoError(t, idx.Delete(ctx, a))
	require.NoError(t, idx.Delete(ctx, a))

	hits, err := idx.Search(ctx, []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.Error(t, idx.Add(ctx, a, nil))
	assert.NoError(t, idx.Close())
}

func TestFloat32RoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
}
