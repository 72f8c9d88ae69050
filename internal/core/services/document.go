package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// MaxListLimit caps how many documents List returns.
const MaxListLimit = 100

// DocumentService manages stored documents and their annotations.
type DocumentService struct {
	docStore    driven.DocumentStore
	annotations driven.AnnotationStore
	files       driven.FileStore
	vectors     driven.VectorIndex
}

// NewDocumentService creates a new document service.
// annotations and vectors are optional (can be nil).
func NewDocumentService(
	docStore driven.DocumentStore,
	annotations driven.AnnotationStore,
	files driven.FileStore,
	vectors driven.VectorIndex,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		annotations: annotations,
		files:       files,
		vectors:     vectors,
	}
}

// List returns the newest documents first, at most MaxListLimit.
func (s *DocumentService) List(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.docStore.ListDocuments(ctx, limit)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// Content returns the canonical PDF bytes the document was ingested with.
func (s *DocumentService) Content(ctx context.Context, id int64) ([]byte, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.files.GetBlob(doc.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	return data, nil
}

// Delete removes a document with its index entry and annotations, then its
// vector and, when nothing else references it, its canonical blob.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted document %d (%s)", id, doc.Filename)

	if s.vectors != nil {
		if err := s.vectors.Delete(ctx, id); err != nil {
			logger.Warn("removing embedding for document %d failed: %v", id, err)
		}
	}

	n, err := s.docStore.CountByContentHash(ctx, doc.ContentHash)
	if err != nil {
		logger.Warn("counting references to blob %s failed: %v", doc.ContentHash, err)
		return nil
	}
	if n == 0 {
		if err := s.files.DeleteBlob(doc.ContentHash); err != nil {
			logger.Warn("removing blob %s failed: %v", doc.ContentHash, err)
		}
	}
	return nil
}

// AddTag attaches a tag to a document.
func (s *DocumentService) AddTag(ctx context.Context, id int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("%w: empty tag", domain.ErrInvalidInput)
	}
	if err := s.requireAnnotations(); err != nil {
		return err
	}
	return s.annotations.AddTag(ctx, id, tag)
}

// RemoveTag detaches a tag from a document.
func (s *DocumentService) RemoveTag(ctx context.Context, id int64, tag string) error {
	if err := s.requireAnnotations(); err != nil {
		return err
	}
	return s.annotations.RemoveTag(ctx, id, strings.TrimSpace(tag))
}

// Tags lists a document's tags.
func (s *DocumentService) Tags(ctx context.Context, id int64) ([]domain.Tag, error) {
	if err := s.requireAnnotations(); err != nil {
		return nil, err
	}
	return s.annotations.ListTags(ctx, id)
}

// AddNote attaches a note to a document.
func (s *DocumentService) AddNote(ctx context.Context, id int64, author, body string) (*domain.Note, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty note", domain.ErrInvalidInput)
	}
	if err := s.requireAnnotations(); err != nil {
		return nil, err
	}
	note := &domain.Note{DocumentID: id, Author: author, Body: body}
	if err := s.annotations.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note.
func (s *DocumentService) DeleteNote(ctx context.Context, noteID int64) error {
	if err := s.requireAnnotations(); err != nil {
		return err
	}
	return s.annotations.DeleteNote(ctx, noteID)
}

// Notes lists a document's notes.
func (s *DocumentService) Notes(ctx context.Context, id int64) ([]domain.Note, error) {
	if err := s.requireAnnotations(); err != nil {
		return nil, err
	}
	return s.annotations.ListNotes(ctx, id)
}

// AddHighlight stores a highlight. Spans must lie inside the highlighted field.
func (s *DocumentService) AddHighlight(ctx context.Context, h domain.Highlight) (*domain.Highlight, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: bad highlight span", domain.ErrInvalidInput)
	}
	if err := s.requireAnnotations(); err != nil {
		return nil, err
	}
	doc, err := s.docStore.GetDocument(ctx, h.DocumentID)
	if err != nil {
		return nil, err
	}
	field := doc.Text
	if h.Field == "translated" {
		field = doc.Translated
	}
	if h.End > len([]rune(field)) {
		return nil, fmt.Errorf("%w: highlight ends past the %s text", domain.ErrInvalidInput, h.Field)
	}
	if err := s.annotations.AddHighlight(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHighlight removes a highlight.
func (s *DocumentService) DeleteHighlight(ctx context.Context, highlightID int64) error {
	if err := s.requireAnnotations(); err != nil {
		return err
	}
	return s.annotations.DeleteHighlight(ctx, highlightID)
}

// Highlights lists a document's highlights.
func (s *DocumentService) Highlights(ctx context.Context, id int64) ([]domain.Highlight, error) {
	if err := s.requireAnnotations(); err != nil {
		return nil, err
	}
	return s.annotations.ListHighlights(ctx, id)
}

func (s *DocumentService) requireAnnotations() error {
	if s.annotations == nil {
		return domain.ErrNotImplemented
	}
	return nil
}
