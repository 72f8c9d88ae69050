// Package pdfengine reads PDFs with ledongthuc/pdf and writes them with fpdf.
//
// Every PDF this package writes is built from scratch: source pages are
// imported as form XObjects through gofpdi, so nothing from the source's
// Info dictionary, XMP stream or annotation layer is carried over. Dates are
// pinned, but gofpdi numbers imported objects in map order, so repeated
// rewrites of one input may differ byte for byte. A rewritten file carries no
// metadata and is therefore kept as is by a second canonicalisation.
package pdfengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	lpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.PDFEngine = (*Engine)(nil)

// fixedDate replaces creation and modification dates in generated files.
var fixedDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Info keys that are not considered identifying metadata.
var neutralInfoKeys = map[string]bool{
	"CreationDate": true,
	"ModDate":      true,
}

// Engine implements driven.PDFEngine.
type Engine struct{}

// New creates a PDF engine.
func New() *Engine {
	return &Engine{}
}

// Inspect reports page sizes and whether identifying metadata is present.
func (e *Engine) Inspect(_ context.Context, data []byte) (info *driven.PDFInfo, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: parsing PDF: %v", domain.ErrUnsupportedFormat, r)
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing PDF: %v", domain.ErrUnsupportedFormat, err)
	}

	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", domain.ErrUnsupportedFormat)
	}

	info = &driven.PDFInfo{Pages: make([]domain.PageSize, 0, n)}
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			return nil, fmt.Errorf("%w: page %d missing", domain.ErrUnsupportedFormat, i)
		}
		info.Pages = append(info.Pages, pageSize(page.V))
	}
	info.HasMetadata = hasMetadata(r.Trailer())
	return info, nil
}

// Rewrite builds a new PDF from the planned pages in order.
func (e *Engine) Rewrite(_ context.Context, data []byte, plan []driven.PagePlan) (out []byte, err error) {
	if len(plan) == 0 {
		return nil, fmt.Errorf("%w: no pages to write", domain.ErrInvalidInput)
	}

	info, err := e.Inspect(context.Background(), data)
	if err != nil {
		return nil, err
	}

	// gofpdi reports parse failures by panicking.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: importing pages: %v", domain.ErrUnsupportedFormat, r)
		}
	}()

	doc := newDocument()
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))

	for i, p := range plan {
		if p.Page < 1 || p.Page > len(info.Pages) {
			return nil, fmt.Errorf("%w: page %d out of range", domain.ErrInvalidInput, p.Page)
		}
		size := info.Pages[p.Page-1]
		doc.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})

		switch {
		case p.Image != nil:
			name := fmt.Sprintf("page-%d-%d", i, p.Page)
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.Image))
			doc.ImageOptions(name, 0, 0, size.Width, size.Height, false, opts, 0, "")
		case p.Blank:
		default:
			tpl := importer.ImportPageFromStream(doc, &rs, p.Page, "/MediaBox")
			importer.UseImportedTemplate(doc, tpl, 0, 0, size.Width, size.Height)
		}

		paintFills(doc, p.Fills)
	}

	return finish(doc)
}

// FromImage wraps a PNG as a single page of the given size.
func (e *Engine) FromImage(_ context.Context, png []byte, size domain.PageSize) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: page size %vx%v", domain.ErrInvalidInput, size.Width, size.Height)
	}
	doc := newDocument()
	doc.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	doc.RegisterImageOptionsReader("image", opts, bytes.NewReader(png))
	doc.ImageOptions("image", 0, 0, size.Width, size.Height, false, opts, 0, "")
	return finish(doc)
}

func newDocument() *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "", "")
	doc.SetProducer("", false)
	doc.SetCreationDate(fixedDate)
	doc.SetModificationDate(fixedDate)
	doc.SetCatalogSort(true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	return doc
}

// paintFills draws opaque black rectangles into the page content stream.
func paintFills(doc *fpdf.Fpdf, fills []domain.Rect) {
	if len(fills) == 0 {
		return
	}
	doc.SetFillColor(0, 0, 0)
	for _, r := range fills {
		doc.Rect(r.X, r.Y, r.Width, r.Height, "F")
	}
}

func finish(doc *fpdf.Fpdf) ([]byte, error) {
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: building PDF: %v", domain.ErrUnsupportedFormat, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: writing PDF: %v", domain.ErrUnsupportedFormat, err)
	}
	return buf.Bytes(), nil
}

// pageSize reads the (possibly inherited) MediaBox and Rotate of a page.
// Letter size is assumed when no usable MediaBox exists.
func pageSize(page lpdf.Value) domain.PageSize {
	size := domain.PageSize{Width: 612, Height: 792}
	box := inherited(page, "MediaBox")
	if box.Kind() == lpdf.Array && box.Len() == 4 {
		w := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
		h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
		if w > 0 && h > 0 {
			size = domain.PageSize{Width: w, Height: h}
		}
	}
	rot := int(inherited(page, "Rotate").Int64()) % 360
	if rot < 0 {
		rot += 360
	}
	if rot == 90 || rot == 270 {
		size.Width, size.Height = size.Height, size.Width
	}
	return size
}

// inherited looks key up on the page and then on its ancestors in the page tree.
func inherited(v lpdf.Value, key string) lpdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if x := v.Key(key); !x.IsNull() {
			return x
		}
		v = v.Key("Parent")
	}
	return lpdf.Value{}
}

// hasMetadata reports whether the trailer carries an XMP stream or any
// non-empty Info entry besides the creation and modification dates.
func hasMetadata(trailer lpdf.Value) bool {
	if !trailer.Key("Root").Key("Metadata").IsNull() {
		return true
	}
	info := trailer.Key("Info")
	if info.Kind() != lpdf.Dict {
		return false
	}
	for _, k := range info.Keys() {
		if neutralInfoKeys[k] {
			continue
		}
		v := info.Key(k)
		if v.Kind() == lpdf.String && v.RawString() == "" {
			continue
		}
		if !v.IsNull() {
			return true
		}
	}
	return false
}
