package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// documentJSON is the wire form of a document. Text fields are only
// included when a single document is fetched.
type documentJSON struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	Lang         string    `json:"lang"`
	PageCount    int       `json:"page_count"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Text         *string   `json:"text,omitempty"`
	Translated   *string   `json:"translated,omitempty"`
}

func toDocumentJSON(d *domain.Document, withText bool) documentJSON {
	out := documentJSON{
		ID:           d.ID,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		Lang:         d.Lang,
		PageCount:    d.PageCount,
		Size:         d.Size,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if withText {
		text, translated := d.Text, d.Translated
		out.Text, out.Translated = &text, &translated
	}
	return out
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", domain.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad %s %q", domain.ErrInvalidInput, name, raw)
	}
	return n, nil
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := s.ports.Documents.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentJSON(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": out})
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.ports.Documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(doc, true))
}

func (s *Server) handleDocFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.ports.Documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.ports.Documents.Content(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, doc.Filename, "application/pdf", data, r.URL.Query().Get("download") != "")
}

func (s *Server) handleDeleteDoc(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Documents.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReingest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.ports.Ingest.Reingest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(doc, true))
}

// writeFile sends raw bytes, inline unless download is set.
func writeFile(w http.ResponseWriter, name, contentType string, data []byte, download bool) {
	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client went away
}
