package httpapi

import (
	"errors"
	"io"

	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// ErrMissingPort is returned when a required service is not provided.
var ErrMissingPort = errors.New("httpapi: ingest, document and search services are required")

// DerivedReader opens derived artifacts for download.
type DerivedReader interface {
	OpenDerived(name string) (io.ReadCloser, error)
}

// Ports aggregates the driving ports the HTTP API calls.
type Ports struct {
	Ingest    driving.IngestService
	Documents driving.DocumentService
	Search    driving.SearchService

	// Redaction, Export and Derived are optional; their routes answer 501
	// when unset.
	Redaction driving.RedactionService
	Export    driving.ExportService
	Derived   DerivedReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ingest == nil || p.Documents == nil || p.Search == nil {
		return ErrMissingPort
	}
	return nil
}
