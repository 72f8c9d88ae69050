// Package tesseractcli recognises text by running the tesseract binary.
// It is used when the native bindings are not compiled in.
package tesseractcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/archivist/internal/adapters/driven/command"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// ErrTesseractNotFound is returned when the tesseract binary is not installed.
var ErrTesseractNotFound = errors.New("tesseract not found in PATH: install tesseract-ocr to enable OCR")

// Engine implements driven.OCREngine with the tesseract command line tool.
type Engine struct {
	dpi    int
	runner driven.CommandRunner
}

// New creates an engine for pages rendered at dpi.
func New(dpi int) *Engine {
	return NewWithRunner(dpi, command.ExecRunner{})
}

// NewWithRunner creates an engine with a custom command runner.
func NewWithRunner(dpi int, runner driven.CommandRunner) *Engine {
	return &Engine{dpi: dpi, runner: runner}
}

// CheckAvailable verifies the tesseract binary is installed.
func (e *Engine) CheckAvailable() error {
	if err := command.Available("tesseract"); err != nil {
		return ErrTesseractNotFound
	}
	return nil
}

// Recognize writes the image to a temporary file and reads the text tesseract
// prints on stdout.
func (e *Engine) Recognize(ctx context.Context, img []byte, languages []string) (string, error) {
	work, err := os.MkdirTemp("", "archivist-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	input := filepath.Join(work, "page.png")
	if err := os.WriteFile(input, img, 0600); err != nil {
		return "", fmt.Errorf("writing page image: %w", err)
	}

	args := []string{input, "stdout"}
	if len(languages) > 0 {
		args = append(args, "-l", strings.Join(languages, "+"))
	}
	if e.dpi > 0 {
		args = append(args, "--dpi", strconv.Itoa(e.dpi))
	}

	out, err := e.runner.Run(ctx, "tesseract", args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}
