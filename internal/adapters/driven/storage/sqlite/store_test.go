package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), DefaultFilename))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// insertTestDocument stores a document with the given text.
func insertTestDocument(t *testing.T, store *Store, filename, text, translated string) int64 {
	t.Helper()
	doc := &domain.Document{
		Filename:   filename,
		Lang:       "en",
		Text:       text,
		Translated: translated,
	}
	id, err := store.DocumentStore().InsertDocument(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func indexRowCount(t *testing.T, store *Store) int {
	t.Helper()
	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM documents_fts_docsize").Scan(&n))
	return n
}

func TestNewStore_CreatesSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"documents", "documents_fts", "tags", "notes", "highlights", "document_vectors"} {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestNewStore_IndexSyncHasNoTriggers(t *testing.T) {
	store := setupTestStore(t)

	var n int
	require.NoError(t, store.db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'trigger'",
	).Scan(&n))
	assert.Zero(t, n, "documents_fts is maintained by paired writes in documents.go")
}

func TestNewStore_RecordsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run 001.
	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	var version, count int
	require.NoError(t, store.db.QueryRow(
		"SELECT MAX(version), COUNT(*) FROM schema_migrations").Scan(&version, &count))
	assert.Equal(t, 1, version)
	assert.Equal(t, 1, count)
}

func TestNewStore_ForeignKeysOnEveryConnection(t *testing.T) {
	store := setupTestStore(t)
	store.db.SetMaxOpenConns(4)

	for i := 0; i < 4; i++ {
		var on int
		require.NoError(t, store.db.QueryRow("PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on)
	}
}

func TestRepairIndex_InSyncIsNoop(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "a.pdf", "alpha", "alpha")

	rebuilt, err := store.RepairIndex(context.Background())
	require.NoError(t, err)
	assert.False(t, rebuilt)
}

func TestRepairIndex_RebuildsMissingEntries(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "a.pdf", "alpha", "alpha")

	// Simulate a row written without its index entry.
	_, err := store.db.Exec(`
		INSERT INTO documents (filename, lang, text, translated, created_at, updated_at)
		VALUES ('b.pdf', 'en', 'bravo', 'bravo', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	require.NoError(t, err)
	assert.Equal(t, 1, indexRowCount(t, store))

	rebuilt, err := store.RepairIndex(context.Background())
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 2, indexRowCount(t, store))

	results, err := store.DocumentStore().Search(context.Background(), "bravo", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b.pdf", results[0].Filename)
}

func TestRepairIndex_RunsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	store, err := NewStore(path)
	require.NoError(t, err)
	_, err = store.db.Exec(`
		INSERT INTO documents (filename, lang, text, translated, created_at, updated_at)
		VALUES ('c.pdf', 'en', 'charlie', 'charlie', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 1, indexRowCount(t, store))
}
