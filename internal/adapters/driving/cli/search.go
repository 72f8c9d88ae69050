package cli

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

var (
	searchLimit    int
	searchTag      string
	searchSemantic bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived documents",
	Long: `Searches the original and translated text of every document.

With --semantic, full-text hits are re-ranked by embedding similarity when
an embedding provider is configured. Without one the search falls back to
full text and reports mode text_only.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "only return documents with this tag")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "re-rank results semantically")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return fmt.Errorf("search %w", ErrServiceNotConfigured)
	}

	opts := domain.SearchOptions{
		Limit:    searchLimit,
		Tag:      searchTag,
		Semantic: searchSemantic,
	}

	resp, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}

	return outputSearchTable(cmd, resp)
}

type searchResultJSON struct {
	ID                int64   `json:"id"`
	Filename          string  `json:"filename"`
	Lang              string  `json:"lang"`
	SnippetText       string  `json:"snippet_text"`
	SnippetTranslated string  `json:"snippet_translated"`
	Score             float64 `json:"score"`
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	out := struct {
		Results []searchResultJSON `json:"results"`
		Mode    domain.SearchMode  `json:"mode"`
	}{
		Results: make([]searchResultJSON, 0, len(resp.Results)),
		Mode:    resp.Mode,
	}
	for i := range resp.Results {
		r := resp.Results[i]
		out.Results = append(out.Results, searchResultJSON{
			ID:                r.DocumentID,
			Filename:          r.Filename,
			Lang:              r.Lang,
			SnippetText:       r.SnippetText,
			SnippetTranslated: r.SnippetTranslated,
			Score:             r.Score,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

var highlightTag = regexp.MustCompile(`</?b>`)

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n\n", resp.Mode)
	for i := range resp.Results {
		r := resp.Results[i]
		cmd.Printf("  [%d] %s #%d (%s, %.2f)\n", i+1, r.Filename, r.DocumentID, r.Lang, r.Score)

		// Terminals get plain snippets; <b> markers are for the web UI.
		if s := highlightTag.ReplaceAllString(r.SnippetText, ""); s != "" {
			cmd.Printf("      %s\n", s)
		}
		if r.SnippetTranslated != r.SnippetText {
			if s := highlightTag.ReplaceAllString(r.SnippetTranslated, ""); s != "" {
				cmd.Printf("      en: %s\n", s)
			}
		}
		cmd.Println()
	}
	return nil
}
