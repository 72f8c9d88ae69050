package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

var testPDF = []byte("%PDF-1.7 test document")

// mockPDFEngine implements driven.PDFEngine for testing.
type mockPDFEngine struct {
	mu          sync.Mutex
	info        *driven.PDFInfo
	inspectErr  error
	rewriteErrs []error
	plans       [][]driven.PagePlan
	fromImage   []domain.PageSize
}

func pdfWithPages(n int, metadata bool) *mockPDFEngine {
	pages := make([]domain.PageSize, n)
	for i := range pages {
		pages[i] = domain.PageSize{Width: 612, Height: 792}
	}
	return &mockPDFEngine{info: &driven.PDFInfo{Pages: pages, HasMetadata: metadata}}
}

func (m *mockPDFEngine) Inspect(_ context.Context, data []byte) (*driven.PDFInfo, error) {
	if m.inspectErr != nil {
		return nil, m.inspectErr
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: not a pdf", domain.ErrUnsupportedFormat)
	}
	return m.info, nil
}

func (m *mockPDFEngine) Rewrite(_ context.Context, _ []byte, plan []driven.PagePlan) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, append([]driven.PagePlan(nil), plan...))
	if len(m.rewriteErrs) > 0 {
		err := m.rewriteErrs[0]
		m.rewriteErrs = m.rewriteErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []byte(fmt.Sprintf("%%PDF-rewritten pages=%d", len(plan))), nil
}

func (m *mockPDFEngine) FromImage(_ context.Context, png []byte, size domain.PageSize) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fromImage = append(m.fromImage, size)
	return append([]byte("%PDF-image "), png...), nil
}

func (m *mockPDFEngine) lastPlan() []driven.PagePlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.plans) == 0 {
		return nil
	}
	return m.plans[len(m.plans)-1]
}

// mockRenderer implements driven.PageRenderer for testing. Page N renders
// as the bytes "page-N".
type mockRenderer struct {
	mu       sync.Mutex
	err      error
	failPage map[int]bool
	dpis     []int
}

func (m *mockRenderer) Render(_ context.Context, _ []byte, page, dpi int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dpis = append(m.dpis, dpi)
	if m.err != nil || m.failPage[page] {
		return nil, errors.New("render failed")
	}
	return []byte(fmt.Sprintf("page-%d", page)), nil
}

// mockOCR implements driven.OCREngine for testing.
type mockOCR struct {
	mu    sync.Mutex
	texts map[string]string
	fail  map[string]bool
	langs []string
}

func (m *mockOCR) Recognize(_ context.Context, img []byte, languages []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.langs = languages
	if m.fail[string(img)] {
		return "", errors.New("tesseract crashed")
	}
	return m.texts[string(img)], nil
}

func (m *mockOCR) Close() error { return nil }

// mockDetector implements driven.LanguageDetector for testing.
type mockDetector struct {
	lang string
	err  error
}

func (m *mockDetector) Detect(string) (string, error) {
	return m.lang, m.err
}

// mockTranslator implements driven.Translator for testing.
type mockTranslator struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("[%s->%s] %s", source, target, text), nil
}

func (m *mockTranslator) Name() string { return "mock" }

// mockConverter implements driven.Converter for testing.
type mockConverter struct {
	out   []byte
	err   error
	block bool
}

func (m *mockConverter) Convert(ctx context.Context, _ []byte, _ string) ([]byte, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.out, m.err
}

// mockImages implements driven.ImageProcessor for testing. Data starting
// with "img" decodes as a 200x100 image; rendered pages ("page-N") as
// 1275x1650.
type mockImages struct {
	mu    sync.Mutex
	fills [][]image.Rectangle
}

func (m *mockImages) Inspect(data []byte) (*driven.ImageInfo, error) {
	switch {
	case bytes.HasPrefix(data, []byte("img")):
		return &driven.ImageInfo{Format: "png", Bounds: image.Rect(0, 0, 200, 100)}, nil
	case bytes.HasPrefix(data, []byte("page-")):
		return &driven.ImageInfo{Format: "png", Bounds: image.Rect(0, 0, 1275, 1650)}, nil
	default:
		return nil, fmt.Errorf("%w: not an image", domain.ErrUnsupportedFormat)
	}
}

func (m *mockImages) NormalizePNG(data []byte) ([]byte, error) {
	return append([]byte("png:"), data...), nil
}

func (m *mockImages) FillRegions(data []byte, regions []image.Rectangle) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills = append(m.fills, regions)
	return append([]byte("filled:"), data...), nil
}

// mockSink implements driven.ArchiveSink for testing.
type mockSink struct {
	mu     sync.Mutex
	err    error
	pushed []string
}

func (m *mockSink) Push(_ context.Context, name string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, name)
	return m.err
}

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pushed...)
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts containing "apple" point one way, everything else another.
type mockEmbeddingService struct {
	err error
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.Contains(strings.ToLower(text), "apple") {
		return []float32{1, 0, 0}, nil
	}
	return []float32{0, 1, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
}

func (m *mockVectorIndex) Add(context.Context, int64, []float32) error { return nil }
func (m *mockVectorIndex) Delete(context.Context, int64) error { return nil }
func (m *mockVectorIndex) Close() error { return nil }

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}
