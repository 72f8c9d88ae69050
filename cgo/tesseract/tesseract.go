//go:build cgo

package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Engine recognises text with libtesseract.
// A gosseract client is not safe for concurrent use, so each call gets its own.
type Engine struct {
	mu        sync.Mutex
	dpi       int
	closed    bool
	newClient func() *gosseract.Client
}

// New creates an OCR engine. dpi is the resolution pages are rendered at.
func New(dpi int) (*Engine, error) {
	return &Engine{dpi: dpi, newClient: gosseract.NewClient}, nil
}

// Recognize returns the text found in a PNG page image.
func (e *Engine) Recognize(ctx context.Context, img []byte, languages []string) (string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return "", fmt.Errorf("%w: engine closed", domain.ErrOCRUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.newClient()
	defer c.Close()

	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close marks the engine closed. Clients are released after every call.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
