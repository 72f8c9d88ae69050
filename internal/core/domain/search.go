package domain

// DefaultSearchLimit bounds the number of hits returned by a query.
const DefaultSearchLimit = 25

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means DefaultSearchLimit.
	Limit int

	// Tag restricts results to documents carrying this tag.
	Tag string

	// Semantic asks for embedding re-ranking when it is available.
	Semantic bool
}

// EffectiveLimit returns Limit, or DefaultSearchLimit when unset.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	return o.Limit
}

// SearchResult is a single search hit.
type SearchResult struct {
	DocumentID int64
	Filename   string
	Lang       string

	// SnippetText highlights matches in the raw text with <b></b>.
	SnippetText string

	// SnippetTranslated highlights matches in the translated text.
	SnippetTranslated string

	// Score is the relevance score; higher is better.
	Score float64
}

// SearchResponse carries hits plus how they were ranked.
type SearchResponse struct {
	Results []SearchResult

	// Mode is the mode actually used, which is text_only after a fallback.
	Mode SearchMode
}
