package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/logger"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 32 << 20

type uploadedJSON struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	Lang      string `json:"lang"`
	PageCount int    `json:"page_count"`
}

type failedJSON struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// handleUpload ingests every file in the "files" and "file" form fields.
// Files are independent: a failure is reported next to the successes. If
// nothing could be ingested the first failure becomes the response status.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["file"]...)
	if len(headers) == 0 {
		writeError(w, fmt.Errorf("%w: no files in upload", domain.ErrInvalidInput))
		return
	}

	uploaded := make([]uploadedJSON, 0, len(headers))
	var (
		failed   []failedJSON
		firstErr error
	)
	for _, fh := range headers {
		doc, err := s.ingestPart(r, fh)
		if err != nil {
			logger.Warn("upload: %s: %v", fh.Filename, err)
			if firstErr == nil {
				firstErr = err
			}
			failed = append(failed, failedJSON{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		uploaded = append(uploaded, uploadedJSON{
			ID: doc.ID, Filename: doc.Filename, Lang: doc.Lang, PageCount: doc.PageCount,
		})
	}

	if len(uploaded) == 0 {
		writeError(w, firstErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploaded": uploaded, "failed": failed})
}

func (s *Server) ingestPart(r *http.Request, fh *multipart.FileHeader) (*domain.Document, error) {
	data, err := readPart(fh)
	if err != nil {
		return nil, err
	}
	return s.ports.Ingest.Ingest(r.Context(), data, fh.Filename)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// formError keeps size errors intact and reports anything else as bad input.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: parsing form: %v", domain.ErrInvalidInput, err)
}
