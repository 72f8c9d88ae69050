// Package libreoffice converts office documents to PDF with a headless
// LibreOffice (soffice) process.
package libreoffice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/archivist/internal/adapters/driven/command"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// ErrSofficeNotFound is returned when the soffice binary is not installed.
var ErrSofficeNotFound = errors.New("soffice not found in PATH: install LibreOffice to convert office documents")

// Converter implements driven.Converter with soffice --convert-to pdf.
type Converter struct {
	binary string
	runner driven.CommandRunner
}

// New creates a converter that runs binary (usually "soffice").
func New(binary string) *Converter {
	return NewWithRunner(binary, command.ExecRunner{})
}

// NewWithRunner creates a converter with a custom command runner.
func NewWithRunner(binary string, runner driven.CommandRunner) *Converter {
	if binary == "" {
		binary = "soffice"
	}
	return &Converter{binary: binary, runner: runner}
}

// CheckAvailable verifies the soffice binary is installed.
func (c *Converter) CheckAvailable() error {
	if err := command.Available(c.binary); err != nil {
		return ErrSofficeNotFound
	}
	return nil
}

// Convert writes data to a private working directory, runs soffice on it and
// reads back the produced PDF. Each call gets its own LibreOffice profile so
// concurrent conversions do not contend for the profile lock.
func (c *Converter) Convert(ctx context.Context, data []byte, filename string) ([]byte, error) {
	work, err := os.MkdirTemp("", "archivist-soffice-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	ext := domain.FileExt(filename)
	if ext == "" {
		ext = ".bin"
	}
	input := filepath.Join(work, "input"+ext)
	if err := os.WriteFile(input, data, 0600); err != nil {
		return nil, fmt.Errorf("writing input: %w", err)
	}

	outDir := filepath.Join(work, "out")
	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(work, "profile")),
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		input,
	}
	if _, err := c.runner.RunIn(ctx, work, c.binary, args...); err != nil {
		return nil, fmt.Errorf("soffice convert %s: %w", filename, err)
	}

	out, err := os.ReadFile(filepath.Join(outDir, "input.pdf"))
	if err != nil {
		return nil, fmt.Errorf("soffice produced no PDF for %s: %w", filename, domain.ErrUnsupportedFormat)
	}
	if !strings.HasPrefix(string(out[:min(len(out), 5)]), "%PDF-") {
		return nil, fmt.Errorf("soffice output for %s is not a PDF: %w", filename, domain.ErrUnsupportedFormat)
	}
	return out, nil
}
