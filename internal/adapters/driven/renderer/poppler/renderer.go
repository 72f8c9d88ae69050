// Package poppler rasterises PDF pages with pdftoppm.
package poppler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/archivist/internal/adapters/driven/command"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// ErrPdftoppmNotFound is returned when poppler-utils is not installed.
var ErrPdftoppmNotFound = errors.New("pdftoppm not found in PATH: install poppler-utils to render pages")

const binary = "pdftoppm"

// Renderer implements driven.PageRenderer.
type Renderer struct {
	runner driven.CommandRunner
}

// New creates a renderer that shells out to pdftoppm.
func New() *Renderer {
	return NewWithRunner(command.ExecRunner{})
}

// NewWithRunner creates a renderer with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Renderer {
	return &Renderer{runner: runner}
}

// CheckAvailable verifies pdftoppm is installed.
func CheckAvailable() error {
	if err := command.Available(binary); err != nil {
		return ErrPdftoppmNotFound
	}
	return nil
}

// Render returns one page as PNG.
func (r *Renderer) Render(ctx context.Context, data []byte, page, dpi int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}
	if dpi <= 0 {
		dpi = 150
	}

	work, err := os.MkdirTemp("", "archivist-render-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	input := filepath.Join(work, "in.pdf")
	if err := os.WriteFile(input, data, 0600); err != nil {
		return nil, fmt.Errorf("writing input: %w", err)
	}

	n := strconv.Itoa(page)
	prefix := filepath.Join(work, "page")
	args := []string{"-r", strconv.Itoa(dpi), "-f", n, "-l", n, "-png", "-singlefile", input, prefix}
	if _, err := r.runner.Run(ctx, binary, args...); err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page, err)
	}

	png, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: no output: %w", page, err)
	}
	return png, nil
}
