package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService extracts page subsets of stored documents.
type ExportService struct {
	pdf      driven.PDFEngine
	docStore driven.DocumentStore
	files    driven.FileStore
	archiver *Archiver
}

// NewExportService creates an export service. archiver may be nil.
func NewExportService(
	pdf driven.PDFEngine,
	docStore driven.DocumentStore,
	files driven.FileStore,
	archiver *Archiver,
) *ExportService {
	return &ExportService{pdf: pdf, docStore: docStore, files: files, archiver: archiver}
}

// ExtractPages builds a new PDF from the pages spec selects, in ascending
// document order. A spec selecting nothing is ErrInvalidInput.
func (s *ExportService) ExtractPages(ctx context.Context, id int64, spec string) (*driving.Artifact, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.files.GetBlob(doc.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	info, err := s.pdf.Inspect(ctx, data)
	if err != nil {
		return nil, err
	}

	pages := domain.ParsePageRanges(spec, len(info.Pages))
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %q selects no pages of %d", domain.ErrInvalidInput, spec, len(info.Pages))
	}
	logger.Debug("Extracting pages %v of document %d", pages, id)

	plan := make([]driven.PagePlan, len(pages))
	for i, p := range pages {
		plan[i] = driven.PagePlan{Page: p}
	}
	out, err := s.pdf.Rewrite(ctx, data, plan)
	if err != nil {
		return nil, fmt.Errorf("write extracted pages: %w", err)
	}

	art := &driving.Artifact{
		Name:        derivedName(doc.Filename, "pages", ".pdf"),
		ContentType: contentTypePDF,
		Data:        out,
	}
	if _, err := s.files.SaveDerived(art.Name, art.Data); err != nil {
		return nil, fmt.Errorf("save extracted pages: %w", err)
	}
	s.archiver.Push(art.Name, art.Data)
	return art, nil
}
