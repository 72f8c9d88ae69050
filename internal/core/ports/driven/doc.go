// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: document records plus the full-text index mirror (SQLite FTS5)
//   - FileStore: canonical files, content-addressed blobs and derived artifacts
//   - PDFEngine: inspect, rewrite and assemble PDFs
//   - ImageProcessor: decode, normalise and paint rasters
//   - ConfigStore: application configuration
//
// # Best-Effort Interfaces
//
// These may be nil or may fail; callers degrade instead of erroring:
//
//   - Converter: office formats to PDF. Without it only PDFs and images ingest.
//   - PageRenderer + OCREngine: without them documents are stored with empty text.
//   - LanguageDetector, Translator: without them lang is "unknown" / text is untranslated.
//   - ArchiveSink: external archive push.
//   - EmbeddingService + VectorIndex: semantic re-ranking.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
