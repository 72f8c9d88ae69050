package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// DocumentService manages stored documents and their annotations.
type DocumentService interface {
	// List returns the newest documents first.
	List(ctx context.Context, limit int) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// Content returns the canonical PDF bytes of a document.
	Content(ctx context.Context, id int64) ([]byte, error)

	// Delete removes a document with its index entry, annotations and vector.
	Delete(ctx context.Context, id int64) error

	AddTag(ctx context.Context, id int64, tag string) error
	RemoveTag(ctx context.Context, id int64, tag string) error
	Tags(ctx context.Context, id int64) ([]domain.Tag, error)

	AddNote(ctx context.Context, id int64, author, body string) (*domain.Note, error)
	DeleteNote(ctx context.Context, noteID int64) error
	Notes(ctx context.Context, id int64) ([]domain.Note, error)

	AddHighlight(ctx context.Context, h domain.Highlight) (*domain.Highlight, error)
	DeleteHighlight(ctx context.Context, highlightID int64) error
	Highlights(ctx context.Context, id int64) ([]domain.Highlight, error)
}
