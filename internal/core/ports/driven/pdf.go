package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// PDFInfo is what the engine learned from parsing a PDF.
type PDFInfo struct {
	// Pages holds each page's size in points, index 0 is page 1.
	Pages []domain.PageSize

	// HasMetadata is true when an Info dictionary or XMP stream is present.
	HasMetadata bool
}

// PagePlan describes how one source page is carried into a rewritten PDF.
type PagePlan struct {
	// Page is the 1-based source page number.
	Page int

	// Image replaces the page content with a PNG of the same page size.
	// Nil keeps the original vector content unless Blank is set.
	Image []byte

	// Blank drops the source content of the page. Only Fills are drawn.
	Blank bool

	// Fills are opaque black rectangles in page space painted over the page.
	Fills []domain.Rect
}

// PDFEngine reads and writes PDF documents. Output never carries document
// metadata (author, producer, custom keys, XMP).
type PDFEngine interface {
	// Inspect parses data and reports page geometry. Unparsable input
	// yields domain.ErrUnsupportedFormat.
	Inspect(ctx context.Context, data []byte) (*PDFInfo, error)

	// Rewrite assembles a new PDF from the listed source pages in order.
	Rewrite(ctx context.Context, data []byte, plan []PagePlan) ([]byte, error)

	// FromImage wraps a PNG as a single-page PDF of the given size in points.
	FromImage(ctx context.Context, png []byte, size domain.PageSize) ([]byte, error)
}

// PageRenderer rasterises PDF pages.
type PageRenderer interface {
	// Render returns page (1-based) of data as a PNG at dpi.
	Render(ctx context.Context, data []byte, page, dpi int) ([]byte, error)
}

// Converter turns non-native documents (office formats, text, HTML) into PDF.
type Converter interface {
	// Convert returns PDF bytes for data. filename supplies the extension
	// the converter uses to pick an import filter.
	Convert(ctx context.Context, data []byte, filename string) ([]byte, error)
}
