package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/core/services"
)

var errBackend = errors.New("backend unavailable")

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// mockArchive implements the ingest, document and search services.
type mockArchive struct {
	docs  map[int64]*domain.Document
	tags  map[int64][]domain.Tag
	notes map[int64][]domain.Note
	err   error

	lastQuery string
	lastOpts  domain.SearchOptions
	ingested  []string
}

func newMockArchive() *mockArchive {
	return &mockArchive{
		docs: map[int64]*domain.Document{
			1: {
				ID: 1, Filename: "invoice.pdf", OriginalName: "invoice.docx", Lang: "fr",
				Text: "Facture numéro 42", Translated: "Invoice number 42",
				ContentHash: "abc123", PageCount: 2, Size: 2048,
				CreatedAt: testTime, UpdatedAt: testTime,
			},
		},
		tags:  map[int64][]domain.Tag{1: {{DocumentID: 1, Name: "finance"}}},
		notes: make(map[int64][]domain.Note),
	}
}

func (m *mockArchive) Ingest(_ context.Context, data []byte, filename string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, domain.ErrUnsupportedFormat
	}
	m.ingested = append(m.ingested, filename)
	id := int64(len(m.docs) + 1)
	doc := &domain.Document{ID: id, Filename: domain.CanonicalFilename(filename), Lang: "en", PageCount: 1}
	m.docs[id] = doc
	return doc, nil
}

func (m *mockArchive) Reingest(ctx context.Context, id int64) (*domain.Document, error) {
	return m.Get(ctx, id)
}

func (m *mockArchive) List(_ context.Context, limit int) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Document, 0, len(m.docs))
	for id := int64(len(m.docs)); id > 0; id-- {
		if d, ok := m.docs[id]; ok {
			out = append(out, *d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockArchive) Get(_ context.Context, id int64) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (m *mockArchive) Content(ctx context.Context, id int64) ([]byte, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.7 test"), nil
}

func (m *mockArchive) Delete(ctx context.Context, id int64) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	delete(m.docs, id)
	return nil
}

func (m *mockArchive) AddTag(ctx context.Context, id int64, tag string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.tags[id] = append(m.tags[id], domain.Tag{DocumentID: id, Name: tag})
	return nil
}

func (m *mockArchive) RemoveTag(_ context.Context, id int64, tag string) error {
	kept := m.tags[id][:0]
	for _, t := range m.tags[id] {
		if t.Name != tag {
			kept = append(kept, t)
		}
	}
	m.tags[id] = kept
	return nil
}

func (m *mockArchive) Tags(_ context.Context, id int64) ([]domain.Tag, error) {
	return m.tags[id], nil
}

func (m *mockArchive) AddNote(ctx context.Context, id int64, author, body string) (*domain.Note, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	n := domain.Note{ID: int64(len(m.notes[id]) + 1), DocumentID: id, Author: author, Body: body, CreatedAt: testTime}
	m.notes[id] = append(m.notes[id], n)
	return &n, nil
}

func (m *mockArchive) DeleteNote(context.Context, int64) error { return nil }

func (m *mockArchive) Notes(_ context.Context, id int64) ([]domain.Note, error) {
	return m.notes[id], nil
}

func (m *mockArchive) AddHighlight(_ context.Context, h domain.Highlight) (*domain.Highlight, error) {
	return &h, nil
}

func (m *mockArchive) DeleteHighlight(context.Context, int64) error { return nil }

func (m *mockArchive) Highlights(context.Context, int64) ([]domain.Highlight, error) {
	return nil, nil
}

func (m *mockArchive) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastQuery = query
	m.lastOpts = opts
	mode := domain.SearchModeTextOnly
	if opts.Semantic {
		mode = domain.SearchModeHybrid
	}
	if query == "nothing" {
		return &domain.SearchResponse{Mode: mode}, nil
	}
	return &domain.SearchResponse{
		Mode: mode,
		Results: []domain.SearchResult{{
			DocumentID:        1,
			Filename:          "invoice.pdf",
			Lang:              "fr",
			SnippetText:       "<b>Facture</b> numéro 42",
			SnippetTranslated: "<b>Invoice</b> number 42",
			Score:             1.5,
		}},
	}, nil
}

func (m *mockArchive) SemanticSearch(ctx context.Context, query string, limit int) (*domain.SearchResponse, error) {
	return m.Search(ctx, query, domain.SearchOptions{Limit: limit, Semantic: true})
}

type mockRedaction struct {
	lastReq  domain.RedactionRequest
	lastDoc  int64
	lastName string
}

func (m *mockRedaction) Redact(_ context.Context, _ []byte, filename string, req domain.RedactionRequest) (*driving.Artifact, error) {
	m.lastReq = req
	m.lastName = filename
	return &driving.Artifact{Name: "redacted.pdf", ContentType: "application/pdf", Data: []byte("%PDF redacted")}, nil
}

func (m *mockRedaction) RedactDocument(_ context.Context, id int64, req domain.RedactionRequest) (*driving.Artifact, error) {
	m.lastReq = req
	m.lastDoc = id
	return &driving.Artifact{Name: "doc-redacted.pdf", ContentType: "application/pdf", Data: []byte("%PDF redacted")}, nil
}

type mockExport struct{}

func (mockExport) ExtractPages(_ context.Context, id int64, spec string) (*driving.Artifact, error) {
	if spec == "0" {
		return nil, domain.ErrInvalidInput
	}
	return &driving.Artifact{Name: "pages.pdf", ContentType: "application/pdf", Data: []byte("%PDF pages")}, nil
}

type testServices struct {
	archive   *mockArchive
	redaction *mockRedaction
	config    *memory.ConfigStore
	settings  *services.SettingsService
}

// setupTestServices injects mocks and returns a cleanup that removes them.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

func setupTestServicesWith() (*testServices, func()) {
	ts := &testServices{
		archive:   newMockArchive(),
		redaction: &mockRedaction{},
		config:    memory.NewConfigStore(),
	}
	ts.settings = services.NewSettingsService(ts.config, nil)

	SetServices(Services{
		Ingest:    ts.archive,
		Documents: ts.archive,
		Search:    ts.archive,
		Redaction: ts.redaction,
		Export:    mockExport{},
		Settings:  ts.settings,
		Scheduler: services.NewScheduler(services.Task{
			ID:       services.TaskIDIndexRepair,
			Name:     "Repair full-text index",
			Interval: time.Hour,
			Run:      func(context.Context) (int, error) { return 3, nil },
		}),
	})
	resetFlags(rootCmd)

	return ts, func() {
		SetServices(Services{})
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag to its default; cobra keeps values between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
