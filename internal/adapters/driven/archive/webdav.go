package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure WebDAV implements the interface.
var _ driven.ArchiveSink = (*WebDAV)(nil)

// WebDAV PUTs files into a collection on a WebDAV server (Nextcloud, Paperless
// consume folders exposed over DAV, and similar).
type WebDAV struct {
	base   string
	token  string
	client *http.Client
}

// NewWebDAV creates a sink for the collection at baseURL.
func NewWebDAV(baseURL, token string, timeout time.Duration) *WebDAV {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WebDAV{
		base:   strings.TrimSuffix(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the backend in logs.
func (w *WebDAV) Name() string { return "webdav" }

// Push stores data at <base>/<name>.
func (w *WebDAV) Push(ctx context.Context, name string, data []byte) error {
	target := w.base + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType(name))
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webdav put %s: %w", name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("webdav put %s: status %d", name, resp.StatusCode)
	}
}
