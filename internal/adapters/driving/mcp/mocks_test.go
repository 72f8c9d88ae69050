package mcp

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response  *domain.SearchResponse
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Mode: domain.SearchModeTextOnly}, nil
	}
	return m.response, nil
}

func (m *mockSearchService) SemanticSearch(_ context.Context, query string, limit int) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Mode: domain.SearchModeHybrid}, nil
	}
	return m.response, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	tags      []domain.Tag
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ int) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}

func (m *mockDocumentService) Content(_ context.Context, _ int64) ([]byte, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ int64) error { return m.err }

func (m *mockDocumentService) AddTag(_ context.Context, id int64, tag string) error {
	if m.err != nil {
		return m.err
	}
	m.tags = append(m.tags, domain.Tag{DocumentID: id, Name: tag})
	return nil
}

func (m *mockDocumentService) RemoveTag(_ context.Context, _ int64, _ string) error { return m.err }

func (m *mockDocumentService) Tags(_ context.Context, _ int64) ([]domain.Tag, error) {
	return m.tags, m.err
}

func (m *mockDocumentService) AddNote(_ context.Context, _ int64, _, _ string) (*domain.Note, error) {
	return nil, m.err
}

func (m *mockDocumentService) DeleteNote(_ context.Context, _ int64) error { return m.err }

func (m *mockDocumentService) Notes(_ context.Context, _ int64) ([]domain.Note, error) {
	return nil, m.err
}

func (m *mockDocumentService) AddHighlight(_ context.Context, _ domain.Highlight) (*domain.Highlight, error) {
	return nil, m.err
}

func (m *mockDocumentService) DeleteHighlight(_ context.Context, _ int64) error { return m.err }

func (m *mockDocumentService) Highlights(_ context.Context, _ int64) ([]domain.Highlight, error) {
	return nil, m.err
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	artifact *driving.Artifact
	err      error
	lastSpec string
}

func (m *mockExportService) ExtractPages(_ context.Context, _ int64, spec string) (*driving.Artifact, error) {
	m.lastSpec = spec
	return m.artifact, m.err
}
