package httpapi

import (
	"net/http"
	"strconv"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

type searchResultJSON struct {
	ID                int64   `json:"id"`
	Filename          string  `json:"filename"`
	Lang              string  `json:"lang"`
	SnippetText       string  `json:"snippet_text"`
	SnippetTranslated string  `json:"snippet_translated"`
	Score             float64 `json:"score"`
}

type searchJSON struct {
	Results []searchResultJSON `json:"results"`
	Mode    domain.SearchMode  `json:"mode"`
}

func toSearchJSON(resp *domain.SearchResponse) searchJSON {
	out := searchJSON{Results: make([]searchResultJSON, len(resp.Results)), Mode: resp.Mode}
	for i, r := range resp.Results {
		out.Results[i] = searchResultJSON{
			ID:                r.DocumentID,
			Filename:          r.Filename,
			Lang:              r.Lang,
			SnippetText:       r.SnippetText,
			SnippetTranslated: r.SnippetTranslated,
			Score:             r.Score,
		}
	}
	return out
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	semantic, _ := strconv.ParseBool(q.Get("semantic")) //nolint:errcheck // absent or malformed means false

	resp, err := s.ports.Search.Search(r.Context(), q.Get("q"), domain.SearchOptions{
		Limit:    limit,
		Tag:      q.Get("tag"),
		Semantic: semantic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchJSON(resp))
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.ports.Search.SemanticSearch(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchJSON(resp))
}
