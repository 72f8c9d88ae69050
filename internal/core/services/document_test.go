package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

type documentFixture struct {
	svc     *DocumentService
	docs    *memory.DocumentStore
	files   *memory.FileStore
	vectors *memory.VectorIndex
}

func newDocumentFixture() *documentFixture {
	docs := memory.NewDocumentStore()
	files := memory.NewFileStore()
	vectors := memory.NewVectorIndex()
	return &documentFixture{
		svc:     NewDocumentService(docs, docs, files, vectors),
		docs:    docs,
		files:   files,
		vectors: vectors,
	}
}

func (f *documentFixture) add(t *testing.T, name string, data []byte) *domain.Document {
	t.Helper()
	hash, err := f.files.PutBlob(data)
	require.NoError(t, err)
	doc := &domain.Document{Filename: name, Text: "some text", ContentHash: hash}
	_, err = f.docs.InsertDocument(context.Background(), doc)
	require.NoError(t, err)
	require.NoError(t, f.vectors.Add(context.Background(), doc.ID, []float32{1, 0}))
	return doc
}

func TestDocumentService_ListAndContent(t *testing.T) {
	f := newDocumentFixture()
	ctx := context.Background()
	a := f.add(t, "a.pdf", []byte("%PDF-a"))
	b := f.add(t, "b.pdf", []byte("%PDF-b"))

	docs, err := f.svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b.ID, docs[0].ID, "newest first")

	data, err := f.svc.Content(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-a"), data)

	_, err = f.svc.Content(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_DeleteCascades(t *testing.T) {
	f := newDocumentFixture()
	ctx := context.Background()
	doc := f.add(t, "a.pdf", []byte("%PDF-a"))
	require.NoError(t, f.svc.AddTag(ctx, doc.ID, "tax"))

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	_, err := f.svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, f.vectors.Has(doc.ID))
	assert.False(t, f.files.HasBlob(doc.ContentHash))

	results, err := f.docs.Search(ctx, "some", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.ErrorIs(t, f.svc.Delete(ctx, doc.ID), domain.ErrNotFound)
}

func TestDocumentService_DeleteKeepsSharedBlob(t *testing.T) {
	f := newDocumentFixture()
	ctx := context.Background()
	first := f.add(t, "a.pdf", []byte("%PDF-same"))
	second := f.add(t, "a.pdf", []byte("%PDF-same"))
	require.Equal(t, first.ContentHash, second.ContentHash)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	assert.True(t, f.files.HasBlob(second.ContentHash))

	data, err := f.svc.Content(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-same"), data)
}

func TestDocumentService_Annotations(t *testing.T) {
	f := newDocumentFixture()
	ctx := context.Background()
	doc := f.add(t, "a.pdf", []byte("%PDF-a"))

	require.NoError(t, f.svc.AddTag(ctx, doc.ID, " invoices "))
	tags, err := f.svc.Tags(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "invoices", tags[0].Name)
	assert.ErrorIs(t, f.svc.AddTag(ctx, doc.ID, "  "), domain.ErrInvalidInput)
	require.NoError(t, f.svc.RemoveTag(ctx, doc.ID, "invoices"))

	note, err := f.svc.AddNote(ctx, doc.ID, "sam", "check page 2")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)
	notes, err := f.svc.Notes(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	_, err = f.svc.AddNote(ctx, doc.ID, "sam", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NoError(t, f.svc.DeleteNote(ctx, note.ID))

	h, err := f.svc.AddHighlight(ctx, domain.Highlight{DocumentID: doc.ID, Field: "text", Start: 0, End: 4})
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	_, err = f.svc.AddHighlight(ctx, domain.Highlight{DocumentID: doc.ID, Field: "text", Start: 0, End: 400})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddHighlight(ctx, domain.Highlight{DocumentID: doc.ID, Field: "title", Start: 0, End: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	highlights, err := f.svc.Highlights(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, highlights, 1)
	require.NoError(t, f.svc.DeleteHighlight(ctx, h.ID))
}

func TestDocumentService_WithoutAnnotationStore(t *testing.T) {
	docs := memory.NewDocumentStore()
	svc := NewDocumentService(docs, nil, memory.NewFileStore(), nil)
	assert.ErrorIs(t, svc.AddTag(context.Background(), 1, "x"), domain.ErrNotImplemented)
}
