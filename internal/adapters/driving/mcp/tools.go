package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// defaultToolLimit caps results when the caller does not ask for a limit.
const defaultToolLimit = 10

// errNoDocumentService is returned by tools that need the document port.
var errNoDocumentService = errors.New("document service not configured")

// SearchInput is the input schema for the search tools.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query to find documents"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Tag      string `json:"tag,omitempty" jsonschema:"only return documents carrying this tag"`
	Semantic bool   `json:"semantic,omitempty" jsonschema:"re-rank with embeddings when available"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
	Mode    string               `json:"mode"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID        int64   `json:"document_id"`
	Filename          string  `json:"filename"`
	Lang              string  `json:"lang"`
	Score             float64 `json:"score"`
	SnippetText       string  `json:"snippet_text,omitempty"`
	SnippetTranslated string  `json:"snippet_translated,omitempty"`
}

// DocumentInput selects a single document.
type DocumentInput struct {
	ID int64 `json:"id" jsonschema:"the document id"`
}

// DocumentOutput is a document with its extracted text.
type DocumentOutput struct {
	ID           int64    `json:"id"`
	Filename     string   `json:"filename"`
	OriginalName string   `json:"original_name"`
	Lang         string   `json:"lang"`
	PageCount    int      `json:"page_count"`
	Text         string   `json:"text"`
	Translated   string   `json:"translated"`
	Tags         []string `json:"tags,omitempty"`
}

// ListInput is the input schema for list_documents.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of documents (default 100)"`
}

// ListOutput lists documents newest first.
type ListOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// DocumentSummary is the short form of a document.
type DocumentSummary struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Lang     string `json:"lang"`
}

// ExtractInput is the input schema for extract_pages.
type ExtractInput struct {
	ID    int64  `json:"id" jsonschema:"the document id"`
	Pages string `json:"pages" jsonschema:"page ranges such as 1-3,5"`
}

// ExtractOutput names the derived artifact.
type ExtractOutput struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// TagInput is the input schema for tag_document.
type TagInput struct {
	ID  int64  `json:"id" jsonschema:"the document id"`
	Tag string `json:"tag" jsonschema:"the tag to attach"`
}

// TagOutput lists the document's tags after the change.
type TagOutput struct {
	Tags []string `json:"tags"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search over the original and translated text of archived documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Rank archived documents by embedding similarity, falling back to full text",
	}, s.handleSemanticSearch)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List archived documents, newest first",
		}, s.handleListDocuments)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_document",
			Description: "Get a document's metadata, OCR text and English translation",
		}, s.handleGetDocument)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "tag_document",
			Description: "Attach a tag to a document",
		}, s.handleTagDocument)
	}

	if s.ports.Export != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "extract_pages",
			Description: "Build a new PDF from selected pages of a document",
		}, s.handleExtractPages)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	opts := domain.SearchOptions{Limit: limit, Tag: input.Tag, Semantic: input.Semantic}
	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(resp), nil
}

// handleSemanticSearch handles the semantic_search tool invocation.
func (s *Server) handleSemanticSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	resp, err := s.ports.Search.SemanticSearch(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(resp), nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.ports.Document.List(ctx, input.Limit)
	if err != nil {
		return nil, ListOutput{}, err
	}

	out := ListOutput{Documents: make([]DocumentSummary, len(docs)), Count: len(docs)}
	for i := range docs {
		out.Documents[i] = DocumentSummary{ID: docs[i].ID, Filename: docs[i].Filename, Lang: docs[i].Lang}
	}
	return nil, out, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	out := DocumentOutput{
		ID:           doc.ID,
		Filename:     doc.Filename,
		OriginalName: doc.OriginalName,
		Lang:         doc.Lang,
		PageCount:    doc.PageCount,
		Text:         doc.Text,
		Translated:   doc.Translated,
	}
	// Tags are optional decoration.
	if tags, err := s.ports.Document.Tags(ctx, doc.ID); err == nil {
		out.Tags = tagNames(tags)
	}
	return nil, out, nil
}

func (s *Server) handleTagDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TagInput,
) (*mcp.CallToolResult, TagOutput, error) {
	if s.ports.Document == nil {
		return nil, TagOutput{}, errNoDocumentService
	}
	if err := s.ports.Document.AddTag(ctx, input.ID, input.Tag); err != nil {
		return nil, TagOutput{}, err
	}
	tags, err := s.ports.Document.Tags(ctx, input.ID)
	if err != nil {
		return nil, TagOutput{}, err
	}
	return nil, TagOutput{Tags: tagNames(tags)}, nil
}

func (s *Server) handleExtractPages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	artifact, err := s.ports.Export.ExtractPages(ctx, input.ID, input.Pages)
	if err != nil {
		return nil, ExtractOutput{}, err
	}
	return nil, ExtractOutput{Name: artifact.Name, Size: len(artifact.Data)}, nil
}

func toSearchOutput(resp *domain.SearchResponse) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(resp.Results)),
		Count:   len(resp.Results),
		Mode:    resp.Mode.String(),
	}
	for i, r := range resp.Results {
		output.Results[i] = SearchResultOutput{
			DocumentID:        r.DocumentID,
			Filename:          r.Filename,
			Lang:              r.Lang,
			Score:             r.Score,
			SnippetText:       r.SnippetText,
			SnippetTranslated: r.SnippetTranslated,
		}
	}
	return output
}

func tagNames(tags []domain.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
