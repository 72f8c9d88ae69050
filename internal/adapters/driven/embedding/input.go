// Package embedding holds helpers shared by the embedding adapters.
//
// Documents are embedded whole, so inputs are clipped to a model-safe prefix
// before they are sent.
package embedding

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// DefaultMaxInputChars bounds the text sent for one document.
const DefaultMaxInputChars = 8000

// Truncate returns at most max bytes of text cut on a rune boundary, with
// whitespace runs collapsed first.
func Truncate(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// StatusError maps a provider HTTP status onto a domain error.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %s", provider, domain.ErrAuthInvalid, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, domain.ErrRateLimited)
	default:
		return fmt.Errorf("%s error (status %d): %s", provider, status, msg)
	}
}
