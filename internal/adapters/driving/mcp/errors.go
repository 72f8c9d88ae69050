// Package mcp provides an MCP (Model Context Protocol) server adapter for archivist.
// It lets AI assistants search the archive and read document text.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
