package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/archivist/cgo/tesseract"
	"github.com/custodia-labs/archivist/internal/adapters/driven/ai"
	"github.com/custodia-labs/archivist/internal/adapters/driven/archive"
	"github.com/custodia-labs/archivist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/archivist/internal/adapters/driven/converter"
	"github.com/custodia-labs/archivist/internal/adapters/driven/converter/libreoffice"
	"github.com/custodia-labs/archivist/internal/adapters/driven/converter/textpdf"
	"github.com/custodia-labs/archivist/internal/adapters/driven/google"
	"github.com/custodia-labs/archivist/internal/adapters/driven/langdetect"
	"github.com/custodia-labs/archivist/internal/adapters/driven/ocr/tesseractcli"
	"github.com/custodia-labs/archivist/internal/adapters/driven/pdfengine"
	"github.com/custodia-labs/archivist/internal/adapters/driven/raster"
	"github.com/custodia-labs/archivist/internal/adapters/driven/renderer/poppler"
	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/disk"
	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archivist/internal/adapters/driven/translator"
	"github.com/custodia-labs/archivist/internal/adapters/driving/cli"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/services"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Configuration keys read only at startup.
const (
	keyDataDir = "storage.data_dir"
	keyDBPath  = "storage.db_path"
)

// repairInterval is how often the full-text index is checked for drift.
const repairInterval = 6 * time.Hour

// application owns everything that must be released on exit.
type application struct {
	services cli.Services
	store    *sqlite.Store
	archiver *services.Archiver
	closers  []func() error
}

// Close waits for pending archive pushes, then releases resources.
func (a *application) Close() {
	a.archiver.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
}

// wire builds the adapters and services from settings.
func wire() (*application, error) {
	ctx := context.Background()

	home, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	dataDir := configStore.GetString(keyDataDir)
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}
	dbPath := configStore.GetString(keyDBPath)
	if dbPath == "" {
		dbPath = filepath.Join(home, "archive.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	app := &application{}

	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app.store = store
	app.closers = append(app.closers, store.Close)

	files, err := disk.NewFileStore(dataDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("opening data directory: %w", err)
	}

	pdf := pdfengine.New()
	images := raster.New()
	renderer := poppler.New()
	if err := poppler.CheckAvailable(); err != nil {
		logger.Error(err, "pdftoppm unavailable: rasterized redaction will blank redacted pages and OCR of PDFs is disabled")
	}
	conv := converter.NewChain(
		textpdf.New(settings.Conversion.Font),
		libreoffice.New(settings.Conversion.Office),
	)

	ocr, closeOCR := buildOCR(settings.OCR.DPI)
	if closeOCR != nil {
		app.closers = append(app.closers, closeOCR)
	}

	sink, err := buildArchiveSink(ctx, settings.Archive)
	if err != nil {
		logger.Warn("archive disabled: %v", err)
		sink = nil
	}
	app.archiver = services.NewArchiver(sink, settings.Archive.Timeout)

	embedding := settings.Embedding
	embedder := services.NewEmbedderHandle(func() (driven.EmbeddingService, error) {
		if !embedding.IsConfigured() {
			return nil, domain.ErrEmbeddingUnavailable
		}
		return ai.CreateAndValidateEmbeddingService(&embedding)
	})

	conversion := services.NewConversionService(pdf, images, renderer, conv, settings.Conversion)
	pipeline := services.NewTextPipeline(
		pdf, renderer, ocr, langdetect.New(), buildTranslator(ctx, settings.Translation),
		settings.OCR, settings.Translation,
	)

	docStore := store.DocumentStore()
	vectors := store.VectorIndex()

	app.services = cli.Services{
		Ingest:    services.NewIngestService(conversion, pipeline, docStore, files, vectors, embedder, app.archiver),
		Documents: services.NewDocumentService(docStore, store.AnnotationStore(), files, vectors),
		Search:    services.NewSearchService(docStore, vectors, embedder, settings.Search.Mode),
		Redaction: services.NewRedactionService(pdf, images, renderer, docStore, files, app.archiver, settings.Redaction),
		Export:    services.NewExportService(pdf, docStore, files, app.archiver),
		Settings:  settingsService,
		Derived:   files,
		Scheduler: services.NewScheduler(services.Task{
			ID:       services.TaskIDIndexRepair,
			Name:     "Repair full-text index",
			Interval: repairInterval,
			Run: func(ctx context.Context) (int, error) {
				repaired, err := store.RepairIndex(ctx)
				if repaired {
					return 1, err
				}
				return 0, err
			},
		}),
	}
	return app, nil
}

// buildOCR prefers the linked libtesseract and falls back to the CLI.
func buildOCR(dpi int) (driven.OCREngine, func() error) {
	eng, err := tesseract.New(dpi)
	if err == nil {
		logger.Debug("ocr: using libtesseract")
		return eng, eng.Close
	}
	logger.Debug("ocr: libtesseract unavailable (%v), using tesseract binary", err)
	return tesseractcli.New(dpi), nil
}

// buildTranslator assembles the configured backends in order. Backends that
// fail to initialise are skipped.
func buildTranslator(ctx context.Context, cfg domain.TranslationSettings) driven.Translator {
	backends := make([]driven.Translator, 0, len(cfg.Providers))
	for _, kind := range cfg.Providers {
		switch kind {
		case domain.TranslatorArgos:
			backends = append(backends, translator.NewArgos())
		case domain.TranslatorLibreTranslate:
			backends = append(backends, translator.NewLibreTranslate(cfg.BaseURL, cfg.APIKey, cfg.Timeout))
		case domain.TranslatorGoogle:
			g, err := translator.NewGoogle(ctx, cfg.APIKey)
			if err != nil {
				logger.Warn("translation: google disabled: %v", err)
				continue
			}
			backends = append(backends, g)
		}
	}
	return translator.NewChain(backends...)
}

var errArchiveConfig = errors.New("incomplete archive configuration")

// buildArchiveSink returns nil when archiving is off.
func buildArchiveSink(ctx context.Context, cfg domain.ArchiveSettings) (driven.ArchiveSink, error) {
	switch cfg.Provider {
	case domain.ArchiveGDrive:
		ts, err := google.NewTokenSource(ctx, google.Credentials{
			AccessToken:  cfg.Token,
			RefreshToken: cfg.RefreshToken,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})
		if err != nil {
			return nil, err
		}
		return archive.NewDrive(ctx, ts, cfg.Folder)
	case domain.ArchiveDropbox:
		if cfg.Token == "" {
			return nil, fmt.Errorf("%w: dropbox needs archive.token", errArchiveConfig)
		}
		return archive.NewDropbox(cfg.Token, cfg.Folder), nil
	case domain.ArchiveWebDAV:
		if cfg.URL == "" {
			return nil, fmt.Errorf("%w: webdav needs archive.url", errArchiveConfig)
		}
		return archive.NewWebDAV(cfg.URL, cfg.Token, cfg.Timeout), nil
	default:
		return nil, nil
	}
}
