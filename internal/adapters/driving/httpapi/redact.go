package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// ArtifactHeader names the stored derived artifact in redaction and
// extraction responses.
const ArtifactHeader = "X-Artifact-Name"

// Redaction form fields. page_pixels_* is the on-screen size the
// rectangles were drawn at; page_canvas_* is the backing canvas size and
// is only used when the on-screen size is missing.
const (
	fieldRects       = "rects"
	fieldKind        = "kind"
	fieldPixelsW     = "page_pixels_w"
	fieldPixelsH     = "page_pixels_h"
	fieldCanvasW     = "page_canvas_w"
	fieldCanvasH     = "page_canvas_h"
	maxRedactionJSON = 4 << 20
)

// handleRedactUpload redacts an uploaded file and returns the result.
func (s *Server) handleRedactUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Redaction == nil {
		writeError(w, fmt.Errorf("redaction: %w", domain.ErrNotImplemented))
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, fmt.Errorf("%w: missing file", domain.ErrInvalidInput))
		return
	}
	data, err := readPart(files[0])
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := redactionFromValues(r.MultipartForm.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Kind == "" {
		req.Kind = sniffKind(data)
	}

	artifact, err := s.ports.Redaction.Redact(r.Context(), data, files[0].Filename, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

// handleRedactDoc redacts a stored document. The request may be a form or
// a JSON body with the same field names.
func (s *Server) handleRedactDoc(w http.ResponseWriter, r *http.Request) {
	if s.ports.Redaction == nil {
		writeError(w, fmt.Errorf("redaction: %w", domain.ErrNotImplemented))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req domain.RedactionRequest
	if isForm(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil && err != http.ErrNotMultipart {
			writeError(w, formError(err))
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll() //nolint:errcheck
		}
		req, err = redactionFromValues(r.Form)
	} else {
		req, err = redactionFromJSON(r.Body)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	artifact, err := s.ports.Redaction.RedactDocument(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func redactionFromValues(values map[string][]string) (domain.RedactionRequest, error) {
	get := func(k string) string {
		if v := values[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var req domain.RedactionRequest
	rects, err := domain.ParseRects([]byte(get(fieldRects)))
	if err != nil {
		return req, err
	}
	req.Rects = rects

	if k := get(fieldKind); k != "" {
		if req.Kind, err = domain.ParseArtifactKind(k); err != nil {
			return req, err
		}
	}

	dims := make(map[string]float64, 4)
	for _, f := range []string{fieldPixelsW, fieldPixelsH, fieldCanvasW, fieldCanvasH} {
		v, err := parseDimension(f, get(f))
		if err != nil {
			return req, err
		}
		dims[f] = v
	}
	req.Canvas = pickCanvas(dims[fieldPixelsW], dims[fieldPixelsH], dims[fieldCanvasW], dims[fieldCanvasH])
	return req, nil
}

// looseFloat accepts a JSON number, a numeric string, or an empty string.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := parseDimension("dimension", s)
		*f = looseFloat(v)
		return err
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = looseFloat(v)
	return nil
}

type redactionBody struct {
	Kind    string          `json:"kind"`
	Rects   json.RawMessage `json:"rects"`
	PixelsW looseFloat      `json:"page_pixels_w"`
	PixelsH looseFloat      `json:"page_pixels_h"`
	CanvasW looseFloat      `json:"page_canvas_w"`
	CanvasH looseFloat      `json:"page_canvas_h"`
}

func redactionFromJSON(body io.Reader) (domain.RedactionRequest, error) {
	var req domain.RedactionRequest
	data, err := io.ReadAll(io.LimitReader(body, maxRedactionJSON))
	if err != nil {
		return req, fmt.Errorf("reading body: %w", err)
	}
	data = bytes.TrimSpace(data)

	// A bare array is just the rectangles.
	if len(data) > 0 && data[0] == '[' {
		req.Rects, err = domain.ParseRects(data)
		return req, err
	}

	var b redactionBody
	if err := json.Unmarshal(data, &b); err != nil {
		return req, fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInput, err)
	}
	if req.Rects, err = domain.ParseRects(b.Rects); err != nil {
		return req, err
	}
	if b.Kind != "" {
		if req.Kind, err = domain.ParseArtifactKind(b.Kind); err != nil {
			return req, err
		}
	}
	req.Canvas = pickCanvas(float64(b.PixelsW), float64(b.PixelsH), float64(b.CanvasW), float64(b.CanvasH))
	return req, nil
}

func parseDimension(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad %s %q", domain.ErrInvalidInput, field, raw)
	}
	return v, nil
}

// pickCanvas prefers the on-screen size, per axis, and falls back to the
// backing canvas size.
func pickCanvas(pixelsW, pixelsH, canvasW, canvasH float64) domain.CanvasSize {
	c := domain.CanvasSize{Width: pixelsW, Height: pixelsH}
	if c.Width == 0 {
		c.Width = canvasW
	}
	if c.Height == 0 {
		c.Height = canvasH
	}
	return c
}

func sniffKind(data []byte) domain.ArtifactKind {
	head := data[:min(len(data), 1024)]
	if bytes.Contains(head, []byte("%PDF-")) {
		return domain.ArtifactPaged
	}
	return domain.ArtifactRaster
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "multipart/") || mt == "application/x-www-form-urlencoded"
}

// writeArtifact sends a derived artifact as a download.
func writeArtifact(w http.ResponseWriter, a *driving.Artifact) {
	w.Header().Set(ArtifactHeader, a.Name)
	writeFile(w, a.Name, a.ContentType, a.Data, true)
}
