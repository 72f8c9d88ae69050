package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

type ingestFixture struct {
	svc      *IngestService
	pdf      *mockPDFEngine
	ocr      *mockOCR
	docs     *memory.DocumentStore
	files    *memory.FileStore
	vectors  *memory.VectorIndex
	sink     *mockSink
	archiver *Archiver
}

func newIngestFixture(t *testing.T, tr driven.Translator, embed driven.EmbeddingService) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		pdf:     pdfWithPages(2, false),
		ocr:     &mockOCR{texts: map[string]string{"page-1": "Guten Tag", "page-2": "Apfelkuchen"}},
		docs:    memory.NewDocumentStore(),
		files:   memory.NewFileStore(),
		vectors: memory.NewVectorIndex(),
		sink:    &mockSink{},
	}
	f.archiver = NewArchiver(f.sink, time.Second)
	conv := NewConversionService(f.pdf, &mockImages{}, nil, nil, domain.ConversionSettings{})
	pipeline := NewTextPipeline(f.pdf, &mockRenderer{}, f.ocr, &mockDetector{lang: "de"}, tr,
		domain.OCRSettings{}, domain.TranslationSettings{})
	f.svc = NewIngestService(conv, pipeline, f.docs, f.files, f.vectors, StaticEmbedder(embed), f.archiver)
	return f
}

func TestIngest_StoresIndexesAndArchives(t *testing.T) {
	f := newIngestFixture(t, &mockTranslator{}, &mockEmbeddingService{})
	ctx := context.Background()

	doc, err := f.svc.Ingest(ctx, testPDF, "Brief an Anna.pdf")
	require.NoError(t, err)
	f.archiver.Wait()

	assert.NotZero(t, doc.ID)
	assert.Equal(t, "Brief_an_Anna.pdf", doc.Filename)
	assert.Equal(t, "Brief an Anna.pdf", doc.OriginalName)
	assert.Equal(t, "de", doc.Lang)
	assert.Equal(t, "Guten Tag\n\nApfelkuchen", doc.Text)
	assert.Equal(t, "[de->en] Guten Tag\n\nApfelkuchen", doc.Translated)
	assert.Equal(t, 2, doc.PageCount)
	assert.EqualValues(t, len(testPDF), doc.Size)

	stored, ok := f.files.Canonical("Brief_an_Anna.pdf")
	require.True(t, ok)
	assert.Equal(t, testPDF, stored)
	assert.True(t, f.files.HasBlob(doc.ContentHash))

	results, err := f.docs.Search(ctx, "Apfelkuchen", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, doc.ID, results[0].DocumentID)

	assert.Equal(t, []string{"Brief_an_Anna.pdf"}, f.sink.names())
	assert.True(t, f.vectors.Has(doc.ID))
}

func TestIngest_UnsupportedFormatStoresNothing(t *testing.T) {
	f := newIngestFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, []byte("\x00\x01binary"), "blob.bin")
	require.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	docs, err := f.docs.ListDocuments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, ok := f.files.Canonical("blob.pdf")
	assert.False(t, ok)
}

func TestIngest_BestEffortFailuresDoNotFail(t *testing.T) {
	f := newIngestFixture(t,
		&mockTranslator{err: domain.ErrTranslationUnavailable},
		&mockEmbeddingService{err: errors.New("model not loaded")})
	f.sink.err = errors.New("drive quota exceeded")
	f.ocr.fail = map[string]bool{"page-1": true}
	ctx := context.Background()

	doc, err := f.svc.Ingest(ctx, testPDF, "scan.pdf")
	require.NoError(t, err)
	f.archiver.Wait()

	assert.Equal(t, "Apfelkuchen", doc.Text)
	assert.Equal(t, doc.Text, doc.Translated)
	assert.False(t, f.vectors.Has(doc.ID))

	results, err := f.docs.Search(ctx, "Apfelkuchen", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIngest_SameNameKeepsOldContent(t *testing.T) {
	f := newIngestFixture(t, nil, nil)
	ctx := context.Background()

	first, err := f.svc.Ingest(ctx, testPDF, "a.pdf")
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, []byte("%PDF-1.7 other bytes"), "a.pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Filename, second.Filename)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)

	old, err := f.files.GetBlob(first.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, testPDF, old)
}

func TestReingest_OverwritesText(t *testing.T) {
	f := newIngestFixture(t, nil, nil)
	ctx := context.Background()

	doc, err := f.svc.Ingest(ctx, testPDF, "memo.pdf")
	require.NoError(t, err)

	f.ocr.texts = map[string]string{"page-1": "neuer Text"}
	updated, err := f.svc.Reingest(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, updated.ID)
	assert.Equal(t, "neuer Text", updated.Text)

	results, err := f.docs.Search(ctx, "Apfelkuchen", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = f.svc.Reingest(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
