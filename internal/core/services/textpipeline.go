package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// TextPipeline renders pages, recognises their text, detects the language
// and translates it into the canonical language. Every stage degrades
// instead of failing: the worst outcome is an empty text.
type TextPipeline struct {
	pdf        driven.PDFEngine
	renderer   driven.PageRenderer
	ocr        driven.OCREngine
	detector   driven.LanguageDetector
	translator driven.Translator
	ocrCfg     domain.OCRSettings
	trCfg      domain.TranslationSettings
}

// NewTextPipeline creates a text pipeline. detector and translator may be nil.
func NewTextPipeline(
	pdf driven.PDFEngine,
	renderer driven.PageRenderer,
	ocr driven.OCREngine,
	detector driven.LanguageDetector,
	translator driven.Translator,
	ocrCfg domain.OCRSettings,
	trCfg domain.TranslationSettings,
) *TextPipeline {
	defaults := domain.DefaultAppSettings()
	if ocrCfg.DPI < 150 {
		ocrCfg.DPI = defaults.OCR.DPI
	}
	if ocrCfg.Workers <= 0 {
		ocrCfg.Workers = defaults.OCR.Workers
	}
	if len(ocrCfg.Languages) == 0 {
		ocrCfg.Languages = defaults.OCR.Languages
	}
	if trCfg.Target == "" {
		trCfg.Target = domain.CanonicalLang
	}
	if trCfg.Timeout <= 0 {
		trCfg.Timeout = defaults.Translation.Timeout
	}
	return &TextPipeline{
		pdf:        pdf,
		renderer:   renderer,
		ocr:        ocr,
		detector:   detector,
		translator: translator,
		ocrCfg:     ocrCfg,
		trCfg:      trCfg,
	}
}

// Extract returns the raw text, language and translation of a canonical PDF.
// It never returns an error.
func (p *TextPipeline) Extract(ctx context.Context, data []byte) domain.ExtractedText {
	logger.Section("Text Extraction")
	raw := p.recognize(ctx, data)

	out := domain.ExtractedText{Raw: raw, Lang: domain.LangUnknown, Translated: raw}
	if raw == "" {
		logger.Debug("No text recognised")
		return out
	}

	lang := p.detect(raw)
	out.Lang = lang
	if lang == domain.LangUnknown || lang == p.trCfg.Target {
		return out
	}
	out.Translated = p.translate(ctx, raw, lang)
	return out
}

// recognize OCRs every page concurrently. Pages that fail are left out.
func (p *TextPipeline) recognize(ctx context.Context, data []byte) string {
	if p.ocr == nil || p.renderer == nil {
		logger.Warn("OCR skipped: engine or renderer not configured")
		return ""
	}
	info, err := p.pdf.Inspect(ctx, data)
	if err != nil {
		logger.Warn("OCR skipped: %v", err)
		return ""
	}

	texts := make([]string, len(info.Pages))
	var g errgroup.Group
	g.SetLimit(p.ocrCfg.Workers)
	for i := range info.Pages {
		page := i + 1
		g.Go(func() error {
			texts[page-1] = p.recognizePage(ctx, data, page)
			return nil
		})
	}
	_ = g.Wait()

	parts := texts[:0]
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	logger.Debug("OCR: %d of %d pages produced text", len(parts), len(info.Pages))
	return strings.TrimSpace(strings.Join(parts, pageSeparator))
}

func (p *TextPipeline) recognizePage(ctx context.Context, data []byte, page int) string {
	if ctx.Err() != nil {
		return ""
	}
	img, err := p.renderer.Render(ctx, data, page, p.ocrCfg.DPI)
	if err != nil {
		logger.Warn("render page %d failed: %v", page, err)
		return ""
	}
	text, err := p.ocr.Recognize(ctx, img, p.ocrCfg.Languages)
	if err != nil {
		logger.Warn("OCR page %d failed: %v", page, err)
		return ""
	}
	return text
}

func (p *TextPipeline) detect(text string) string {
	if p.detector == nil {
		return domain.LangUnknown
	}
	lang, err := p.detector.Detect(text)
	if err != nil || lang == "" {
		logger.Debug("Language undetermined: %v", err)
		return domain.LangUnknown
	}
	logger.Debug("Detected language: %s", lang)
	return lang
}

// translate returns text unchanged on any failure.
func (p *TextPipeline) translate(ctx context.Context, text, source string) string {
	if p.translator == nil {
		return text
	}
	tctx, cancel := context.WithTimeout(ctx, p.trCfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := p.translator.Translate(tctx, text, source, p.trCfg.Target)
	if err != nil || strings.TrimSpace(out) == "" {
		logger.Warn("translation %s->%s via %s failed: %v", source, p.trCfg.Target, p.translator.Name(), err)
		return text
	}
	logger.Debug("Translated %s->%s via %s in %s", source, p.trCfg.Target, p.translator.Name(),
		time.Since(start).Round(time.Millisecond))
	return out
}
