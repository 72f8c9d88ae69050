package textpdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Page layout in points.
const (
	margin     = 56.0
	bodySize   = 10.5
	lineHeight = 14.0
	titleSize  = 15.0
)

var fixedDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Converter typesets extracted text onto A4 pages.
type Converter struct {
	fontPath string
}

// New creates a converter. fontPath optionally names a TrueType font with
// wide Unicode coverage (e.g. DejaVuSans.ttf). Without one, text is limited to
// the Windows-1252 repertoire of the built-in Helvetica, and documents with
// other characters are refused so a later converter can handle them.
func New(fontPath string) *Converter {
	return &Converter{fontPath: fontPath}
}

// Supports reports whether filename has a text extractor.
func (c *Converter) Supports(filename string) bool {
	return Supports(filename)
}

// Convert extracts text from data and lays it out as a PDF.
func (c *Converter) Convert(ctx context.Context, data []byte, filename string) ([]byte, error) {
	doc, err := extract(data, filename)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.fontPath == "" {
		if r, ok := outsideCP1252(doc.Title + doc.Body); ok {
			return nil, fmt.Errorf("%w: character %q needs a Unicode font", domain.ErrUnsupportedFormat, r)
		}
	}
	return c.typeset(doc)
}

// outsideCP1252 returns the first rune Helvetica cannot draw.
func outsideCP1252(s string) (rune, bool) {
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return r, true
		}
	}
	return 0, false
}

func (c *Converter) typeset(doc *content) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetProducer("", false)
	pdf.SetCreationDate(fixedDate)
	pdf.SetModificationDate(fixedDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)

	family, tr := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if c.fontPath != "" {
		font, err := os.ReadFile(c.fontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font %s: %w", c.fontPath, err)
		}
		pdf.AddUTF8FontFromBytes("body", "", font)
		pdf.AddUTF8FontFromBytes("body", "B", font)
		family, tr = "body", func(s string) string { return s }
	}

	pdf.AddPage()
	if title := strings.TrimSpace(doc.Title); title != "" {
		pdf.SetFont(family, "B", titleSize)
		pdf.MultiCell(0, titleSize*1.3, tr(title), "", "L", false)
		pdf.Ln(lineHeight / 2)
	}

	pdf.SetFont(family, "", bodySize)
	body := strings.ReplaceAll(doc.Body, "\t", "    ")
	if body == "" {
		body = " "
	}
	pdf.MultiCell(0, lineHeight, tr(body), "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: typesetting: %v", domain.ErrUnsupportedFormat, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: writing PDF: %v", domain.ErrUnsupportedFormat, err)
	}
	return buf.Bytes(), nil
}
