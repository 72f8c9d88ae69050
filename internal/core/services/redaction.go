package services

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure RedactionService implements the interface.
var _ driving.RedactionService = (*RedactionService)(nil)

const (
	contentTypePDF = "application/pdf"
	contentTypePNG = "image/png"
)

// RedactionService paints regions of PDFs and images out permanently.
// Sources are never modified; every call yields a new derived artifact.
type RedactionService struct {
	pdf      driven.PDFEngine
	images   driven.ImageProcessor
	renderer driven.PageRenderer
	docStore driven.DocumentStore
	files    driven.FileStore
	archiver *Archiver
	settings domain.RedactionSettings
}

// NewRedactionService creates a redaction service. renderer may be nil. In
// rasterize mode a page that cannot be rendered keeps only its fills, so
// redacted text never survives under a box.
func NewRedactionService(
	pdf driven.PDFEngine,
	images driven.ImageProcessor,
	renderer driven.PageRenderer,
	docStore driven.DocumentStore,
	files driven.FileStore,
	archiver *Archiver,
	settings domain.RedactionSettings,
) *RedactionService {
	defaults := domain.DefaultAppSettings().Redaction
	if !settings.Mode.IsValid() {
		settings.Mode = defaults.Mode
	}
	if settings.DPI <= 0 {
		settings.DPI = defaults.DPI
	}
	return &RedactionService{
		pdf:      pdf,
		images:   images,
		renderer: renderer,
		docStore: docStore,
		files:    files,
		archiver: archiver,
		settings: settings,
	}
}

// Redact applies req to data and stores the result as a derived artifact.
func (s *RedactionService) Redact(
	ctx context.Context, data []byte, filename string, req domain.RedactionRequest,
) (*driving.Artifact, error) {
	logger.Section("Redaction")
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Redacting %q: kind=%s rects=%d canvas=%.0fx%.0f",
		filename, req.Kind, len(req.Rects), req.Canvas.Width, req.Canvas.Height)

	var (
		art *driving.Artifact
		err error
	)
	switch req.Kind {
	case domain.ArtifactRaster:
		art, err = s.redactRaster(data, filename, req.Rects)
	default:
		art, err = s.redactPaged(ctx, data, filename, req)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.files.SaveDerived(art.Name, art.Data); err != nil {
		return nil, fmt.Errorf("save redacted artifact: %w", err)
	}
	s.archiver.Push(art.Name, art.Data)
	logger.Info("Redacted %q into %s", filename, art.Name)
	return art, nil
}

// RedactDocument applies a paged redaction to a stored document.
func (s *RedactionService) RedactDocument(
	ctx context.Context, id int64, req domain.RedactionRequest,
) (*driving.Artifact, error) {
	if req.Kind == "" {
		req.Kind = domain.ArtifactPaged
	}
	if req.Kind != domain.ArtifactPaged {
		return nil, fmt.Errorf("%w: stored documents are paged", domain.ErrInvalidInput)
	}
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.files.GetBlob(doc.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	return s.Redact(ctx, data, doc.Filename, req)
}

func (s *RedactionService) redactPaged(
	ctx context.Context, data []byte, filename string, req domain.RedactionRequest,
) (*driving.Artifact, error) {
	info, err := s.pdf.Inspect(ctx, data)
	if err != nil {
		return nil, err
	}

	byPage := domain.RectsByPage(req.Rects)
	for page := range byPage {
		if page < 1 || page > len(info.Pages) {
			logger.Debug("Skipping %d rectangle(s) on missing page %d", len(byPage[page]), page)
		}
	}

	plan := make([]driven.PagePlan, len(info.Pages))
	for i, size := range info.Pages {
		page := i + 1
		plan[i] = driven.PagePlan{Page: page, Fills: pageFills(byPage[page], size, req.Canvas)}
		if len(plan[i].Fills) > 0 && s.settings.Mode == domain.RedactionRasterize {
			plan[i].Image = s.flattenPage(ctx, data, page, plan[i].Fills)
			if plan[i].Image == nil {
				logger.Warn("redaction: page %d could not be flattened, writing it blank", page)
				plan[i].Blank = true
			}
		}
	}

	out, err := s.pdf.Rewrite(ctx, data, plan)
	if err != nil {
		return nil, fmt.Errorf("write redacted pdf: %w", err)
	}
	return &driving.Artifact{
		Name:        derivedName(filename, "redacted", ".pdf"),
		ContentType: contentTypePDF,
		Data:        out,
	}, nil
}

// pageFills maps canvas rectangles into page space and drops those that
// collapse after clamping.
func pageFills(rects []domain.Rect, size domain.PageSize, canvas domain.CanvasSize) []domain.Rect {
	var fills []domain.Rect
	for _, r := range rects {
		mapped := domain.MapToPage(r, size, canvas)
		if kept, ok := domain.ClampToPage(mapped, size); ok {
			fills = append(fills, kept)
		}
	}
	return fills
}

// flattenPage renders a page and paints its fills into the raster. It
// returns nil on any failure.
func (s *RedactionService) flattenPage(ctx context.Context, data []byte, page int, fills []domain.Rect) []byte {
	if s.renderer == nil {
		return nil
	}
	img, err := s.renderer.Render(ctx, data, page, s.settings.DPI)
	if err != nil {
		logger.Warn("redaction: render page %d failed: %v", page, err)
		return nil
	}
	info, err := s.images.Inspect(img)
	if err != nil {
		logger.Warn("redaction: page %d raster unreadable: %v", page, err)
		return nil
	}
	var regions []image.Rectangle
	for _, f := range fills {
		if px, ok := domain.ClampToPixels(domain.ToPixels(f, float64(s.settings.DPI)), info.Bounds); ok {
			regions = append(regions, px)
		}
	}
	out, err := s.images.FillRegions(img, regions)
	if err != nil {
		logger.Warn("redaction: painting page %d failed: %v", page, err)
		return nil
	}
	return out
}

func (s *RedactionService) redactRaster(data []byte, filename string, rects []domain.Rect) (*driving.Artifact, error) {
	info, err := s.images.Inspect(data)
	if err != nil {
		return nil, err
	}
	var regions []image.Rectangle
	for _, r := range rects {
		if px, ok := domain.ClampToPixels(r, info.Bounds); ok {
			regions = append(regions, px)
		}
	}
	out, err := s.images.FillRegions(data, regions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnsupportedFormat, err)
	}
	return &driving.Artifact{
		Name:        derivedName(filename, "redacted", ".png"),
		ContentType: contentTypePNG,
		Data:        out,
	}, nil
}

// derivedName builds a fresh artifact name such as "report-redacted-1a2b3c4d.pdf".
func derivedName(source, label, ext string) string {
	return fmt.Sprintf("%s-%s-%s%s", domain.SanitizeBase(source), label, uuid.NewString()[:8], ext)
}
