package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivist/internal/adapters/driven/command"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Argos implements the interface.
var _ driven.Translator = (*Argos)(nil)

// ErrArgosNotFound is returned when argos-translate is not installed.
var ErrArgosNotFound = errors.New("argos-translate not found in PATH: install argostranslate for offline translation")

// argosMaxChars keeps each argument well under ARG_MAX.
const argosMaxChars = 4000

// Argos translates offline with the argos-translate command line tool.
// Language packages must already be installed for each pair.
type Argos struct {
	runner driven.CommandRunner
}

// NewArgos creates an offline translator.
func NewArgos() *Argos {
	return NewArgosWithRunner(command.ExecRunner{})
}

// NewArgosWithRunner creates an offline translator with a custom command runner.
func NewArgosWithRunner(runner driven.CommandRunner) *Argos {
	return &Argos{runner: runner}
}

// CheckAvailable verifies the argos-translate binary is installed.
func (a *Argos) CheckAvailable() error {
	if err := command.Available("argos-translate"); err != nil {
		return ErrArgosNotFound
	}
	return nil
}

// Name identifies the backend in logs.
func (a *Argos) Name() string { return "argos" }

// Translate runs argos-translate once per piece of text.
func (a *Argos) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("argos: source language required")
	}
	return translatePieces(text, argosMaxChars, func(piece string) (string, error) {
		out, err := a.runner.Run(ctx, "argos-translate", "--from-lang", source, "--to-lang", target, piece)
		if err != nil {
			return "", fmt.Errorf("argos %s->%s: %w", source, target, err)
		}
		return strings.TrimRight(string(out), "\n"), nil
	})
}
