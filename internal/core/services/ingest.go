package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedTimeout bounds the best-effort embedding of one document.
const embedTimeout = 30 * time.Second

// IngestService canonicalises uploads, extracts their text and stores them.
type IngestService struct {
	conversion *ConversionService
	pipeline   *TextPipeline
	docStore   driven.DocumentStore
	files      driven.FileStore
	vectors    driven.VectorIndex
	embedder   *EmbedderHandle
	archiver   *Archiver
}

// NewIngestService creates an ingest service.
// vectors, embedder and archiver are optional (can be nil).
func NewIngestService(
	conversion *ConversionService,
	pipeline *TextPipeline,
	docStore driven.DocumentStore,
	files driven.FileStore,
	vectors driven.VectorIndex,
	embedder *EmbedderHandle,
	archiver *Archiver,
) *IngestService {
	return &IngestService{
		conversion: conversion,
		pipeline:   pipeline,
		docStore:   docStore,
		files:      files,
		vectors:    vectors,
		embedder:   embedder,
		archiver:   archiver,
	}
}

// Ingest canonicalises data, extracts its text and stores the document.
func (s *IngestService) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	logger.Section("Ingest")
	logger.Info("Ingesting %q (%d bytes)", filename, len(data))

	canonical, err := s.conversion.Canonicalize(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	if _, err := s.files.SaveCanonical(canonical.Name, canonical.Data); err != nil {
		return nil, fmt.Errorf("save canonical file: %w", err)
	}
	hash, err := s.files.PutBlob(canonical.Data)
	if err != nil {
		return nil, fmt.Errorf("store canonical blob: %w", err)
	}
	s.archiver.Push(canonical.Name, canonical.Data)

	text := s.pipeline.Extract(ctx, canonical.Data)

	doc := &domain.Document{
		Filename:     canonical.Name,
		OriginalName: filename,
		Lang:         text.Lang,
		Text:         text.Raw,
		Translated:   text.Translated,
		ContentHash:  hash,
		PageCount:    canonical.Pages,
		Size:         int64(len(canonical.Data)),
	}
	if _, err := s.docStore.InsertDocument(ctx, doc); err != nil {
		s.releaseBlob(ctx, hash)
		return nil, fmt.Errorf("insert document: %w", err)
	}
	logger.Info("Stored document %d: %s (%s, %d pages)", doc.ID, doc.Filename, doc.Lang, doc.PageCount)

	s.embed(ctx, doc)
	return doc, nil
}

// Reingest re-runs text extraction on the stored canonical PDF and
// overwrites the document's text fields.
func (s *IngestService) Reingest(ctx context.Context, id int64) (*domain.Document, error) {
	logger.Section("Reingest")
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.files.GetBlob(doc.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}

	text := s.pipeline.Extract(ctx, data)
	doc.Lang = text.Lang
	doc.Text = text.Raw
	doc.Translated = text.Translated
	if err := s.docStore.UpdateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	logger.Info("Reingested document %d (%s)", doc.ID, doc.Lang)

	s.embed(ctx, doc)
	return doc, nil
}

// embed stores the translated text's embedding. Failures are logged only.
func (s *IngestService) embed(ctx context.Context, doc *domain.Document) {
	if s.vectors == nil {
		return
	}
	svc := s.embedder.Get()
	if svc == nil {
		return
	}
	text := strings.TrimSpace(doc.Translated)
	if text == "" {
		return
	}

	ectx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	vec, err := svc.Embed(ectx, text)
	if err != nil {
		logger.Warn("embedding document %d failed: %v", doc.ID, err)
		return
	}
	if err := s.vectors.Add(ectx, doc.ID, vec); err != nil {
		logger.Warn("storing embedding for document %d failed: %v", doc.ID, err)
	}
}

// releaseBlob removes a blob no document references.
func (s *IngestService) releaseBlob(ctx context.Context, hash string) {
	n, err := s.docStore.CountByContentHash(ctx, hash)
	if err != nil || n > 0 {
		return
	}
	if err := s.files.DeleteBlob(hash); err != nil {
		logger.Warn("removing orphaned blob %s failed: %v", hash, err)
	}
}
