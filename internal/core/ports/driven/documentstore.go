package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// DocumentStore persists document records together with their full-text
// index entries. Every mutation updates both in one unit of work, so a live
// document always has exactly one index entry and vice versa.
type DocumentStore interface {
	// InsertDocument stores a new document and indexes it. The assigned ID is
	// written back to doc.ID and returned.
	InsertDocument(ctx context.Context, doc *domain.Document) (int64, error)

	// UpdateDocument overwrites every mutable field of an existing document
	// and re-indexes it. Returns domain.ErrNotFound for unknown IDs.
	UpdateDocument(ctx context.Context, doc *domain.Document) error

	// DeleteDocument removes a document, its index entry and its annotations.
	DeleteDocument(ctx context.Context, id int64) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// ListDocuments returns the newest documents first, at most limit.
	ListDocuments(ctx context.Context, limit int) ([]domain.Document, error)

	// CountByContentHash counts documents pointing at a canonical blob.
	CountByContentHash(ctx context.Context, hash string) (int, error)

	// Search runs a full-text query and returns ranked hits with snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// AnnotationStore persists tags, notes and highlights. Annotations are owned
// by a document and disappear with it.
type AnnotationStore interface {
	AddTag(ctx context.Context, docID int64, name string) error
	RemoveTag(ctx context.Context, docID int64, name string) error
	ListTags(ctx context.Context, docID int64) ([]domain.Tag, error)

	AddNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id int64) error
	ListNotes(ctx context.Context, docID int64) ([]domain.Note, error)

	AddHighlight(ctx context.Context, h *domain.Highlight) error
	DeleteHighlight(ctx context.Context, id int64) error
	ListHighlights(ctx context.Context, docID int64) ([]domain.Highlight, error)
}
