package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/logger"
)

// handleExtract builds a PDF from a page selection given as ?pages= or
// {"pages": "..."}.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.ports.Export == nil {
		writeError(w, fmt.Errorf("export: %w", domain.ErrNotImplemented))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	spec := r.URL.Query().Get("pages")
	if spec == "" && r.ContentLength != 0 {
		var body struct {
			Pages string `json:"pages"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInput, err))
			return
		}
		spec = body.Pages
	}
	if strings.TrimSpace(spec) == "" {
		writeError(w, fmt.Errorf("%w: pages is required", domain.ErrInvalidInput))
		return
	}

	artifact, err := s.ports.Export.ExtractPages(r.Context(), id, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

// handleDerived downloads a stored redaction or extract.
func (s *Server) handleDerived(w http.ResponseWriter, r *http.Request) {
	if s.ports.Derived == nil {
		writeError(w, fmt.Errorf("derived artifacts: %w", domain.ErrNotImplemented))
		return
	}
	name := r.PathValue("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, fmt.Errorf("%w: bad artifact name %q", domain.ErrInvalidInput, name))
		return
	}

	rc, err := s.ports.Derived.OpenDerived(name)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		logger.Debug("http: streaming %s: %v", name, err)
	}
}
