// Package langdetect identifies the language of extracted text with whatlanggo.
package langdetect

import (
	"errors"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.LanguageDetector = (*Detector)(nil)

// ErrUndetermined is returned when the text is too short or ambiguous.
var ErrUndetermined = errors.New("language could not be determined")

// minLetters is the smallest number of letters worth classifying.
const minLetters = 8

// Detector implements driven.LanguageDetector.
type Detector struct {
	// MinConfidence below which a detection is rejected.
	MinConfidence float64
}

// New creates a detector with the library's reliability threshold.
func New() *Detector {
	return &Detector{}
}

// Detect returns the ISO 639-1 code of the dominant language in text.
func (d *Detector) Detect(text string) (string, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	if countLetters(text) < minLetters {
		return "", ErrUndetermined
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < d.MinConfidence {
		return "", ErrUndetermined
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetermined
	}
	return Canonical(code), nil
}

// Canonical normalises a language code to its shortest BCP 47 base form.
// Unparseable codes are returned lower-cased.
func Canonical(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
