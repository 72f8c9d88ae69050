// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several store interfaces
// through a single database connection:
//
//   - DocumentStore: document records and the FTS5 index mirror
//   - AnnotationStore: tags, notes and highlights
//   - VectorIndex: per-document embeddings with brute-force cosine search
//
// # Index Consistency
//
// documents_fts is an external-content FTS5 table over documents. There are
// no triggers; every insert, update and delete writes the record and its
// index entry inside one transaction. On open the store compares the index
// against the record set and rebuilds the index if they disagree, which
// repairs databases written by older versions or edited by hand.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.archivist/data/archivist.db
//
// # Thread Safety
//
// All operations are thread-safe. Reads run concurrently under WAL; writes
// are serialised by the store so transactions never race for the write lock.
package sqlite
