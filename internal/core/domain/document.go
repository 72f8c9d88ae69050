package domain

import (
	"strings"
	"time"
)

const (
	// LangUnknown is stored when language detection fails or there is no text.
	LangUnknown = "unknown"

	// CanonicalLang is the language every document is translated into.
	CanonicalLang = "en"
)

// Document is one canonicalised upload: its stored PDF, its OCR text and
// the English translation of that text.
type Document struct {
	// ID is the integer identity assigned by the store on insert.
	ID int64

	// Filename is the sanitised canonical filename (always .pdf).
	Filename string

	// OriginalName is the filename as uploaded.
	OriginalName string

	// Lang is the detected language code, or LangUnknown.
	Lang string

	// Text is the raw OCR output. May be empty, never absent.
	Text string

	// Translated is Text in CanonicalLang. Equals Text when no translation happened.
	Translated string

	// ContentHash is the sha256 of the canonical PDF this record points at.
	ContentHash string

	// PageCount is the number of pages in the canonical PDF.
	PageCount int

	// Size is the canonical PDF size in bytes.
	Size int64

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the text fields were last overwritten.
	UpdatedAt time.Time
}

// ApplyTextDefaults fills Lang and Translated so a stored record never has
// an empty language or a missing translation.
func (d *Document) ApplyTextDefaults() {
	if strings.TrimSpace(d.Lang) == "" {
		d.Lang = LangUnknown
	}
	if d.Translated == "" {
		d.Translated = d.Text
	}
}

// ExtractedText is the result of running the text pipeline over a document.
type ExtractedText struct {
	Raw        string
	Lang       string
	Translated string
}

// Tag is a label attached to a document.
type Tag struct {
	DocumentID int64
	Name       string
	CreatedAt  time.Time
}

// Note is a free-text comment attached to a document.
type Note struct {
	ID         int64
	DocumentID int64
	Author     string
	Body       string
	CreatedAt  time.Time
}

// Highlight marks a span of a document's text.
type Highlight struct {
	ID         int64
	DocumentID int64
	Author     string

	// Field is "text" or "translated".
	Field string

	Start int
	End   int
	Color string

	CreatedAt time.Time
}

// Valid reports whether the highlight span is usable.
func (h Highlight) Valid() bool {
	if h.Field != "text" && h.Field != "translated" {
		return false
	}
	return h.Start >= 0 && h.End > h.Start
}
