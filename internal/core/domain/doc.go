// Package domain defines the core business entities for archivist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a canonicalised, OCR'd and indexed file
//   - Rect / RedactionRequest: regions to black out in page or pixel space
//   - PageSize / CanvasSize: the two coordinate spaces and the mapping between them
//   - Tag, Note, Highlight: annotations owned by a document
//
// It also holds the pure functions the services share: rectangle scaling and
// clamping, page-range parsing and filename sanitisation.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
