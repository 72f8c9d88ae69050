package httpapi

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// fakeArchive implements the document, ingest and search ports over a map.
type fakeArchive struct {
	mu        sync.Mutex
	nextID    int64
	docs      map[int64]*domain.Document
	content   map[int64][]byte
	tags      map[int64][]domain.Tag
	notes     []domain.Note
	hls       []domain.Highlight
	lastOpts  domain.SearchOptions
	lastQuery string
	searchErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		docs:    make(map[int64]*domain.Document),
		content: make(map[int64][]byte),
		tags:    make(map[int64][]domain.Tag),
	}
}

func (f *fakeArchive) Ingest(_ context.Context, data []byte, filename string) (*domain.Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) && !bytes.HasPrefix(data, []byte("text:")) {
		return nil, domain.ErrUnsupportedFormat
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc := &domain.Document{
		ID: f.nextID, Filename: domain.CanonicalFilename(filename), OriginalName: filename,
		Lang: "en", Text: string(data), Translated: string(data), PageCount: 1,
	}
	f.docs[doc.ID] = doc
	f.content[doc.ID] = data
	return doc, nil
}

func (f *fakeArchive) Reingest(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Translated = "reingested"
	return doc, nil
}

func (f *fakeArchive) List(_ context.Context, limit int) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArchive) Get(_ context.Context, id int64) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeArchive) Content(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.content[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeArchive) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	delete(f.content, id)
	return nil
}

func (f *fakeArchive) AddTag(_ context.Context, id int64, tag string) error {
	if tag == "" {
		return domain.ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[id] = append(f.tags[id], domain.Tag{DocumentID: id, Name: tag})
	return nil
}

func (f *fakeArchive) RemoveTag(_ context.Context, id int64, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tags[id][:0]
	for _, t := range f.tags[id] {
		if t.Name != tag {
			kept = append(kept, t)
		}
	}
	f.tags[id] = kept
	return nil
}

func (f *fakeArchive) Tags(_ context.Context, id int64) ([]domain.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[id], nil
}

func (f *fakeArchive) AddNote(_ context.Context, id int64, author, body string) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.Note{ID: int64(len(f.notes) + 1), DocumentID: id, Author: author, Body: body}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeArchive) DeleteNote(_ context.Context, _ int64) error { return nil }

func (f *fakeArchive) Notes(_ context.Context, _ int64) ([]domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes, nil
}

func (f *fakeArchive) AddHighlight(_ context.Context, h domain.Highlight) (*domain.Highlight, error) {
	if !h.Valid() {
		return nil, domain.ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	h.ID = int64(len(f.hls) + 1)
	f.hls = append(f.hls, h)
	return &h, nil
}

func (f *fakeArchive) DeleteHighlight(_ context.Context, _ int64) error { return nil }

func (f *fakeArchive) Highlights(_ context.Context, _ int64) ([]domain.Highlight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hls, nil
}

func (f *fakeArchive) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	f.lastQuery, f.lastOpts = query, opts
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &domain.SearchResponse{
		Mode: domain.SearchModeTextOnly,
		Results: []domain.SearchResult{{
			DocumentID: 1, Filename: "a.pdf", Lang: "fr",
			SnippetText: "<b>bonjour</b>", SnippetTranslated: "<b>hello</b>", Score: 1.5,
		}},
	}, nil
}

func (f *fakeArchive) SemanticSearch(_ context.Context, query string, limit int) (*domain.SearchResponse, error) {
	f.lastQuery, f.lastOpts = query, domain.SearchOptions{Limit: limit, Semantic: true}
	return &domain.SearchResponse{Mode: domain.SearchModeHybrid}, nil
}

// fakeRedaction records the last request.
type fakeRedaction struct {
	lastReq  domain.RedactionRequest
	lastName string
	lastID   int64
	lastData []byte
	err      error
}

func (f *fakeRedaction) Redact(_ context.Context, data []byte, filename string, req domain.RedactionRequest) (*driving.Artifact, error) {
	f.lastData, f.lastName, f.lastReq = data, filename, req
	if f.err != nil {
		return nil, f.err
	}
	return &driving.Artifact{Name: "scan-redacted-0001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-redacted")}, nil
}

func (f *fakeRedaction) RedactDocument(_ context.Context, id int64, req domain.RedactionRequest) (*driving.Artifact, error) {
	f.lastID, f.lastReq = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &driving.Artifact{Name: "doc-redacted-0002.pdf", ContentType: "application/pdf", Data: []byte("%PDF-redacted")}, nil
}

// fakeExport records the last page spec.
type fakeExport struct {
	lastSpec string
}

func (f *fakeExport) ExtractPages(_ context.Context, _ int64, spec string) (*driving.Artifact, error) {
	f.lastSpec = spec
	if spec == "0" {
		return nil, domain.ErrInvalidInput
	}
	return &driving.Artifact{Name: "doc-pages-0003.pdf", ContentType: "application/pdf", Data: []byte("%PDF-pages")}, nil
}
