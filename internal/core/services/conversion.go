package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// fallbackRasterDPI is used to re-render pages of a PDF the engine cannot
// rewrite structurally.
const fallbackRasterDPI = 150

var pdfMagic = []byte("%PDF-")

// Canonical is a canonicalised upload.
type Canonical struct {
	// Name is the sanitised canonical filename.
	Name string

	// Data is the metadata-free PDF.
	Data []byte

	// Pages is the page count of Data.
	Pages int
}

// ConversionService turns arbitrary uploads into metadata-free PDFs.
type ConversionService struct {
	pdf       driven.PDFEngine
	images    driven.ImageProcessor
	renderer  driven.PageRenderer
	converter driven.Converter
	settings  domain.ConversionSettings
}

// NewConversionService creates a conversion service. renderer and converter
// may be nil; the paths that need them then fail with ErrUnsupportedFormat.
func NewConversionService(
	pdf driven.PDFEngine,
	images driven.ImageProcessor,
	renderer driven.PageRenderer,
	converter driven.Converter,
	settings domain.ConversionSettings,
) *ConversionService {
	defaults := domain.DefaultAppSettings().Conversion
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.ImageDPI <= 0 {
		settings.ImageDPI = defaults.ImageDPI
	}
	return &ConversionService{
		pdf:       pdf,
		images:    images,
		renderer:  renderer,
		converter: converter,
		settings:  settings,
	}
}

// Canonicalize converts data into the canonical PDF for filename.
func (s *ConversionService) Canonicalize(ctx context.Context, data []byte, filename string) (*Canonical, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrUnsupportedFormat)
	}
	name := domain.CanonicalFilename(filename)
	logger.Debug("Canonicalising %q as %s (%d bytes)", filename, name, len(data))

	var (
		out   []byte
		pages int
		err   error
	)
	switch {
	case isPDF(data, filename):
		out, pages, err = s.stripPDF(ctx, data)
	case s.isImage(data):
		out, pages, err = s.wrapImage(ctx, data)
	default:
		out, pages, err = s.convertExternal(ctx, data, filename)
	}
	if err != nil {
		return nil, err
	}
	return &Canonical{Name: name, Data: out, Pages: pages}, nil
}

func isPDF(data []byte, filename string) bool {
	if bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], " \t\r\n"), pdfMagic) {
		return true
	}
	return domain.FileExt(filename) == ".pdf"
}

func (s *ConversionService) isImage(data []byte) bool {
	if s.images == nil {
		return false
	}
	_, err := s.images.Inspect(data)
	return err == nil
}

// stripPDF returns data unchanged when it carries no metadata, otherwise a
// structural rewrite of every page. Documents the engine cannot rewrite are
// rasterised page by page.
func (s *ConversionService) stripPDF(ctx context.Context, data []byte) ([]byte, int, error) {
	info, err := s.pdf.Inspect(ctx, data)
	if err != nil {
		return nil, 0, fmt.Errorf("inspect pdf: %w", err)
	}
	pages := len(info.Pages)
	if !info.HasMetadata {
		logger.Debug("PDF has no metadata, keeping original bytes")
		return data, pages, nil
	}

	plan := make([]driven.PagePlan, pages)
	for i := range plan {
		plan[i] = driven.PagePlan{Page: i + 1}
	}
	out, err := s.pdf.Rewrite(ctx, data, plan)
	if err == nil {
		return out, pages, nil
	}
	logger.Warn("structural rewrite failed, rasterising pages: %v", err)

	out, err = s.rasterize(ctx, data, plan)
	if err != nil {
		return nil, 0, err
	}
	return out, pages, nil
}

func (s *ConversionService) rasterize(ctx context.Context, data []byte, plan []driven.PagePlan) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: pdf cannot be rewritten and no renderer is configured", domain.ErrUnsupportedFormat)
	}
	for i := range plan {
		img, err := s.renderer.Render(ctx, data, plan[i].Page, fallbackRasterDPI)
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %w", domain.ErrUnsupportedFormat, plan[i].Page, err)
		}
		plan[i].Image = img
	}
	out, err := s.pdf.Rewrite(ctx, data, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterised rewrite: %w", domain.ErrUnsupportedFormat, err)
	}
	return out, nil
}

// wrapImage places a raster on a single page sized from its pixel
// dimensions at the configured image DPI.
func (s *ConversionService) wrapImage(ctx context.Context, data []byte) ([]byte, int, error) {
	info, err := s.images.Inspect(data)
	if err != nil {
		return nil, 0, err
	}
	png, err := s.images.NormalizePNG(data)
	if err != nil {
		return nil, 0, fmt.Errorf("normalise %s image: %w", info.Format, err)
	}
	k := 72.0 / float64(s.settings.ImageDPI)
	size := domain.PageSize{
		Width:  float64(info.Bounds.Dx()) * k,
		Height: float64(info.Bounds.Dy()) * k,
	}
	out, err := s.pdf.FromImage(ctx, png, size)
	if err != nil {
		return nil, 0, fmt.Errorf("wrap image: %w", err)
	}
	return out, 1, nil
}

// convertExternal runs the configured converter under the conversion timeout
// and canonicalises its output.
func (s *ConversionService) convertExternal(ctx context.Context, data []byte, filename string) ([]byte, int, error) {
	if s.converter == nil {
		return nil, 0, fmt.Errorf("%w: no converter for %q", domain.ErrUnsupportedFormat, domain.FileExt(filename))
	}

	cctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.converter.Convert(cctx, data, filename)
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("%w: %w after %s", domain.ErrUnsupportedFormat,
				domain.ErrConversionTimeout, s.settings.Timeout)
		}
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: convert %q: %w", domain.ErrUnsupportedFormat, filename, err)
	}
	logger.Debug("Converted %q in %s", filename, time.Since(start).Round(time.Millisecond))

	if !bytes.HasPrefix(out, pdfMagic) {
		return nil, 0, fmt.Errorf("%w: converter returned non-PDF output", domain.ErrUnsupportedFormat)
	}
	return s.stripPDF(ctx, out)
}
