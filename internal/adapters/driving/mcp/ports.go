package mcp

import (
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Document manages stored documents and annotations.
	Document driving.DocumentService

	// Export extracts page ranges into new PDFs.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Document and Export are optional
	return nil
}
