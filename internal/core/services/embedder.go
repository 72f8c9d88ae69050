package services

import (
	"sync"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// EmbedderFactory builds an embedding service. It returns (nil, nil) when
// no provider is configured.
type EmbedderFactory func() (driven.EmbeddingService, error)

// EmbedderHandle is a process-wide embedding service built on first use.
// Construction runs at most once, even under concurrent first calls; a
// failed construction is remembered and the handle stays empty.
type EmbedderHandle struct {
	once    sync.Once
	factory EmbedderFactory
	svc     driven.EmbeddingService
}

// NewEmbedderHandle creates a handle. factory may be nil.
func NewEmbedderHandle(factory EmbedderFactory) *EmbedderHandle {
	return &EmbedderHandle{factory: factory}
}

// StaticEmbedder wraps an already-built service.
func StaticEmbedder(svc driven.EmbeddingService) *EmbedderHandle {
	h := &EmbedderHandle{svc: svc}
	h.once.Do(func() {})
	return h
}

// Get returns the embedding service, or nil when none is available.
func (h *EmbedderHandle) Get() driven.EmbeddingService {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		if h.factory == nil {
			return
		}
		svc, err := h.factory()
		if err != nil {
			logger.Warn("embedding service unavailable: %v", err)
			return
		}
		if svc != nil {
			logger.Info("Embedding model ready: %s (%d dims)", svc.ModelName(), svc.Dimensions())
		}
		h.svc = svc
	})
	return h.svc
}
