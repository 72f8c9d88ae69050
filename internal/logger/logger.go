// Package logger provides the process-wide logger for archivist.
// Debug, Info and Section output is only emitted in verbose mode; warnings
// and errors are always written so best-effort failures stay visible.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	mu       sync.RWMutex
	verbose  bool
	jsonMode bool
	output   io.Writer = os.Stderr
	log                = build(os.Stderr, false)
)

// build constructs a zerolog logger for w. Terminals get the console writer,
// everything else gets JSON lines.
func build(w io.Writer, forceJSON bool) zerolog.Logger {
	if !forceJSON && isTerminal(w) {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		return zerolog.New(cw).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(w, jsonMode)
}

// SetJSON forces JSON output even when writing to a terminal.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonMode = v
	log = build(output, v)
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// Section logs a section marker if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Info().Str("section", name).Msg("=== " + name + " ===")
	}
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Info().Msg(fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning. Warnings are always emitted.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs an error with an attached cause. Errors are always emitted.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Err(err).Msg(fmt.Sprintf(format, args...))
}

// With returns a child zerolog logger carrying the given string fields,
// for components that log many lines with shared context.
func With(fields map[string]string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	ctx := log.With()
	for k, v := range fields {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}
