package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

type tagJSON struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type noteJSON struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type highlightJSON struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Field     string    `json:"field"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// decodeBody reads a small JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// author names the caller for notes and highlights.
func author(r *http.Request) string {
	if id, ok := IdentityFrom(r.Context()); ok {
		return id.Subject
	}
	return domain.Anonymous.Subject
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	tags, err := s.ports.Documents.Tags(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]tagJSON, len(tags))
	for i, t := range tags {
		out[i] = tagJSON{Name: t.Name, CreatedAt: t.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": out})
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Documents.AddTag(r.Context(), id, body.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Documents.RemoveTag(r.Context(), id, r.PathValue("tag")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	notes, err := s.ports.Documents.Notes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]noteJSON, len(notes))
	for i, n := range notes {
		out[i] = noteJSON{ID: n.ID, Author: n.Author, Body: n.Body, CreatedAt: n.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": out})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	note, err := s.ports.Documents.AddNote(r.Context(), id, author(r), body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteJSON{ID: note.ID, Author: note.Author, Body: note.Body, CreatedAt: note.CreatedAt})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Documents.DeleteNote(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHighlights(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	hs, err := s.ports.Documents.Highlights(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]highlightJSON, len(hs))
	for i := range hs {
		out[i] = toHighlightJSON(&hs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"highlights": out})
}

func (s *Server) handleAddHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Field string `json:"field"`
		Start int    `json:"start"`
		End   int    `json:"end"`
		Color string `json:"color"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	h, err := s.ports.Documents.AddHighlight(r.Context(), domain.Highlight{
		DocumentID: id,
		Author:     author(r),
		Field:      body.Field,
		Start:      body.Start,
		End:        body.End,
		Color:      body.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHighlightJSON(h))
}

func (s *Server) handleDeleteHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "highlightID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Documents.DeleteHighlight(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toHighlightJSON(h *domain.Highlight) highlightJSON {
	return highlightJSON{
		ID: h.ID, Author: h.Author, Field: h.Field,
		Start: h.Start, End: h.End, Color: h.Color, CreatedAt: h.CreatedAt,
	}
}
