package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// rrfK damps the influence of top ranks in reciprocal rank fusion.
	rrfK = 60

	// leadWords is how many words of a document a semantic hit shows.
	leadWords = 30
)

// SearchService answers full-text queries and, when an embedding provider
// and vector index are available, re-ranks them semantically.
type SearchService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    *EmbedderHandle
	mode        domain.SearchMode
}

// NewSearchService creates a new search service.
// vectorIndex and embedder are optional (can be nil). mode is the default
// used when a query does not ask for semantic ranking itself.
func NewSearchService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder *EmbedderHandle,
	mode domain.SearchMode,
) *SearchService {
	if !mode.IsValid() {
		mode = domain.SearchModeTextOnly
	}
	return &SearchService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		mode:        mode,
	}
}

// Search runs a full-text query. Semantic re-ranking is applied when it is
// requested or configured and available; its failure falls back to the
// full-text ranking.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, tag: %q", query, opts.Tag)

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResponse{Results: []domain.SearchResult{}, Mode: domain.SearchModeTextOnly}, nil
	}
	limit := opts.EffectiveLimit()

	wantHybrid := opts.Semantic || s.mode == domain.SearchModeHybrid
	if !wantHybrid || !s.canDoVector() {
		if wantHybrid {
			logger.Debug("Semantic ranking unavailable, using full text")
		}
		results, err := s.keywordSearch(ctx, query, opts, limit)
		if err != nil {
			return nil, err
		}
		return &domain.SearchResponse{Results: results, Mode: domain.SearchModeTextOnly}, nil
	}

	results, mode, err := s.hybridSearch(ctx, query, opts, limit)
	if err != nil {
		return nil, err
	}
	logger.Info("Search %q: %d results (%s)", query, len(results), mode)
	return &domain.SearchResponse{Results: results, Mode: mode}, nil
}

// SemanticSearch ranks documents by embedding similarity alone. It always
// answers: when embeddings are unavailable or fail it runs a full-text query.
func (s *SearchService) SemanticSearch(ctx context.Context, query string, limit int) (*domain.SearchResponse, error) {
	logger.Section("Semantic Search")
	opts := domain.SearchOptions{Limit: limit}
	limit = opts.EffectiveLimit()

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResponse{Results: []domain.SearchResult{}, Mode: domain.SearchModeTextOnly}, nil
	}

	if s.canDoVector() {
		results, err := s.semanticResults(ctx, query, limit)
		if err == nil {
			return &domain.SearchResponse{Results: results, Mode: domain.SearchModeHybrid}, nil
		}
		logger.Warn("semantic search failed, falling back to full text: %v", err)
	}

	results, err := s.keywordSearch(ctx, query, opts, limit)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResponse{Results: results, Mode: domain.SearchModeTextOnly}, nil
}

func (s *SearchService) semanticResults(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	hits, err := s.vectorSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, hits, nil)
}

func (s *SearchService) canDoVector() bool {
	return s.vectorIndex != nil && s.embedder.Get() != nil
}

func (s *SearchService) keywordSearch(
	ctx context.Context, query string, opts domain.SearchOptions, limit int,
) ([]domain.SearchResult, error) {
	opts.Limit = limit
	results, err := s.docStore.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	logger.Debug("Keyword search: %d hits", len(results))
	return results, nil
}

func (s *SearchService) vectorSearch(ctx context.Context, query string, limit int) ([]driven.VectorHit, error) {
	svc := s.embedder.Get()
	if svc == nil || s.vectorIndex == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	embedding, err := svc.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))
	return hits, nil
}

// hybridSearch runs keyword and vector retrieval in parallel and merges
// them with reciprocal rank fusion. A failed vector leg degrades to the
// keyword ranking; a failed keyword leg is an error.
func (s *SearchService) hybridSearch(
	ctx context.Context, query string, opts domain.SearchOptions, limit int,
) ([]domain.SearchResult, domain.SearchMode, error) {
	internalLimit := limit * 2

	var (
		keyword            []domain.SearchResult
		vector             []driven.VectorHit
		keywordErr, vecErr error
		wg                 sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		keyword, keywordErr = s.keywordSearch(ctx, query, opts, internalLimit)
	}()
	go func() {
		defer wg.Done()
		vector, vecErr = s.vectorSearch(ctx, query, internalLimit)
	}()
	wg.Wait()

	if keywordErr != nil {
		return nil, "", keywordErr
	}
	if vecErr != nil {
		logger.Warn("Hybrid search: vector search failed, using keyword results only: %v", vecErr)
		return truncate(keyword, limit), domain.SearchModeTextOnly, nil
	}

	// A tag filter only applies to the full-text leg, so vector-only hits
	// would escape it.
	if opts.Tag != "" {
		allowed := make(map[int64]bool, len(keyword))
		for _, r := range keyword {
			allowed[r.DocumentID] = true
		}
		kept := vector[:0]
		for _, h := range vector {
			if allowed[h.DocumentID] {
				kept = append(kept, h)
			}
		}
		vector = kept
	}

	logger.Debug("Hybrid search: merging %d keyword + %d vector results with RRF", len(keyword), len(vector))
	merged := reciprocalRankFusion(keyword, vector, rrfK)

	byID := make(map[int64]domain.SearchResult, len(keyword))
	for _, r := range keyword {
		byID[r.DocumentID] = r
	}
	results, err := s.hydrate(ctx, merged, byID)
	if err != nil {
		return nil, "", err
	}
	return truncate(results, limit), domain.SearchModeHybrid, nil
}

// reciprocalRankFusion merges a keyword ranking and a vector ranking.
// Ties keep keyword order, then document order.
func reciprocalRankFusion(keyword []domain.SearchResult, vector []driven.VectorHit, k int) []driven.VectorHit {
	scores := make(map[int64]float64)
	first := make(map[int64]int)
	order := 0
	add := func(id int64, rank int) {
		scores[id] += 1.0 / float64(k+rank+1)
		if _, ok := first[id]; !ok {
			first[id] = order
			order++
		}
	}
	for rank, r := range keyword {
		add(r.DocumentID, rank)
	}
	for rank, h := range vector {
		add(h.DocumentID, rank)
	}

	merged := make([]driven.VectorHit, 0, len(scores))
	for id, score := range scores {
		merged = append(merged, driven.VectorHit{DocumentID: id, Similarity: score})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return first[merged[i].DocumentID] < first[merged[j].DocumentID]
	})
	return merged
}

// hydrate turns scored document IDs into results, reusing the full-text
// snippets in known and loading the rest. Deleted documents are skipped.
func (s *SearchService) hydrate(
	ctx context.Context, hits []driven.VectorHit, known map[int64]domain.SearchResult,
) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if r, ok := known[h.DocumentID]; ok {
			r.Score = h.Similarity
			results = append(results, r)
			continue
		}
		doc, err := s.docStore.GetDocument(ctx, h.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %d: %w", h.DocumentID, err)
		}
		results = append(results, domain.SearchResult{
			DocumentID:        doc.ID,
			Filename:          doc.Filename,
			Lang:              doc.Lang,
			SnippetText:       leadSnippet(doc.Text, leadWords),
			SnippetTranslated: leadSnippet(doc.Translated, leadWords),
			Score:             h.Similarity,
		})
	}
	return results, nil
}

// leadSnippet returns the first n words of text.
func leadSnippet(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " ..."
}

func truncate(results []domain.SearchResult, limit int) []domain.SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
