// Package memory provides in-memory implementations of the storage ports,
// used by service tests and by `archivist` commands run with --ephemeral.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore   = (*DocumentStore)(nil)
	_ driven.AnnotationStore = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore and
// driven.AnnotationStore. Search is a case-insensitive substring match over
// filename, text and translated text.
type DocumentStore struct {
	mu         sync.RWMutex
	nextID     int64
	nextNoteID int64
	documents  map[int64]domain.Document
	tags       map[int64]map[string]time.Time
	notes      map[int64]domain.Note
	highlights map[int64]domain.Highlight
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[int64]domain.Document),
		tags:       make(map[int64]map[string]time.Time),
		notes:      make(map[int64]domain.Note),
		highlights: make(map[int64]domain.Highlight),
	}
}

// InsertDocument stores a document and assigns the next ID.
func (s *DocumentStore) InsertDocument(_ context.Context, doc *domain.Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ApplyTextDefaults()
	s.nextID++
	doc.ID = s.nextID
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.documents[doc.ID] = *doc
	return doc.ID, nil
}

// UpdateDocument overwrites an existing document.
func (s *DocumentStore) UpdateDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	doc.ApplyTextDefaults()
	doc.UpdatedAt = time.Now().UTC()
	s.documents[doc.ID] = *doc
	return nil
}

// DeleteDocument removes a document and its annotations.
func (s *DocumentStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.tags, id)
	for nid, n := range s.notes {
		if n.DocumentID == id {
			delete(s.notes, nid)
		}
	}
	for hid, h := range s.highlights {
		if h.DocumentID == id {
			delete(s.highlights, hid)
		}
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns the newest documents first.
func (s *DocumentStore) ListDocuments(_ context.Context, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID > docs[j].ID })
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// CountByContentHash counts documents referencing a blob.
func (s *DocumentStore) CountByContentHash(_ context.Context, hash string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, d := range s.documents {
		if d.ContentHash == hash {
			n++
		}
	}
	return n, nil
}

// Search matches every query word as a substring. Score is the number of
// occurrences; ties are broken by ascending ID.
func (s *DocumentStore) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.SearchResult
	for id, d := range s.documents {
		if opts.Tag != "" {
			if _, ok := s.tags[id][opts.Tag]; !ok {
				continue
			}
		}
		hay := strings.ToLower(d.Filename + " " + d.Text + " " + d.Translated)
		score := 0
		for _, w := range words {
			c := strings.Count(hay, w)
			if c == 0 {
				score = 0
				break
			}
			score += c
		}
		if score == 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			DocumentID:        id,
			Filename:          d.Filename,
			Lang:              d.Lang,
			SnippetText:       d.Text,
			SnippetTranslated: d.Translated,
			Score:             float64(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	if limit := opts.EffectiveLimit(); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// AddTag attaches a tag.
func (s *DocumentStore) AddTag(_ context.Context, docID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return domain.ErrNotFound
	}
	if s.tags[docID] == nil {
		s.tags[docID] = make(map[string]time.Time)
	}
	if _, ok := s.tags[docID][name]; !ok {
		s.tags[docID][name] = time.Now().UTC()
	}
	return nil
}

// RemoveTag detaches a tag.
func (s *DocumentStore) RemoveTag(_ context.Context, docID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[docID][name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tags[docID], name)
	return nil
}

// ListTags returns a document's tags in name order.
func (s *DocumentStore) ListTags(_ context.Context, docID int64) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tags []domain.Tag
	for name, at := range s.tags[docID] {
		tags = append(tags, domain.Tag{DocumentID: docID, Name: name, CreatedAt: at})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// AddNote stores a note.
func (s *DocumentStore) AddNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[note.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	s.nextNoteID++
	note.ID = s.nextNoteID
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	s.notes[note.ID] = *note
	return nil
}

// DeleteNote removes a note.
func (s *DocumentStore) DeleteNote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// ListNotes returns a document's notes oldest first.
func (s *DocumentStore) ListNotes(_ context.Context, docID int64) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Note
	for _, n := range s.notes {
		if n.DocumentID == docID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddHighlight stores a highlight.
func (s *DocumentStore) AddHighlight(_ context.Context, h *domain.Highlight) error {
	if !h.Valid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[h.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	s.nextNoteID++
	h.ID = s.nextNoteID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	s.highlights[h.ID] = *h
	return nil
}

// DeleteHighlight removes a highlight.
func (s *DocumentStore) DeleteHighlight(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.highlights[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.highlights, id)
	return nil
}

// ListHighlights returns a document's highlights in text order.
func (s *DocumentStore) ListHighlights(_ context.Context, docID int64) ([]domain.Highlight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Highlight
	for _, h := range s.highlights {
		if h.DocumentID == docID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}
