package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

const documentColumns = `id, filename, original_name, lang, text, translated,
	content_hash, page_count, size, created_at, updated_at`

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// InsertDocument stores a document and its index entry in one transaction.
func (s *documentStore) InsertDocument(ctx context.Context, doc *domain.Document) (int64, error) {
	doc.ApplyTextDefaults()
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	err := s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO documents (filename, original_name, lang, text, translated,
				content_hash, page_count, size, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.Filename, doc.OriginalName, doc.Lang, doc.Text, doc.Translated,
			doc.ContentHash, doc.PageCount, doc.Size, doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading document id: %w", err)
		}
		if err := indexInsert(ctx, tx, id, doc.Filename, doc.Text, doc.Translated); err != nil {
			return err
		}
		doc.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

// UpdateDocument overwrites a document and replaces its index entry.
func (s *documentStore) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	doc.ApplyTextDefaults()
	doc.UpdatedAt = time.Now().UTC()

	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		old, err := indexedFields(ctx, tx, doc.ID)
		if err != nil {
			return err
		}
		if err := indexDelete(ctx, tx, doc.ID, old); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE documents SET filename = ?, original_name = ?, lang = ?, text = ?,
				translated = ?, content_hash = ?, page_count = ?, size = ?, updated_at = ?
			WHERE id = ?
		`, doc.Filename, doc.OriginalName, doc.Lang, doc.Text, doc.Translated,
			doc.ContentHash, doc.PageCount, doc.Size, doc.UpdatedAt, doc.ID)
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		return indexInsert(ctx, tx, doc.ID, doc.Filename, doc.Text, doc.Translated)
	})
}

// DeleteDocument removes a document, its index entry and, through foreign
// key cascades, its annotations and vector.
func (s *documentStore) DeleteDocument(ctx context.Context, id int64) error {
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		old, err := indexedFields(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := indexDelete(ctx, tx, id, old); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		return nil
	})
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// ListDocuments returns the newest documents first.
func (s *documentStore) ListDocuments(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// CountByContentHash counts documents referencing a canonical blob.
func (s *documentStore) CountByContentHash(ctx context.Context, hash string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE content_hash = ?", hash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents by hash: %w", err)
	}
	return n, nil
}

// Search runs a full-text query. Matches in filename, raw text and
// translated text all count; snippets are cut from the two text columns.
func (s *documentStore) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	sqlText := `
		SELECT d.id, d.filename, d.lang,
			snippet(documents_fts, 1, '<b>', '</b>', ' … ', 10),
			snippet(documents_fts, 2, '<b>', '</b>', ' … ', 10),
			bm25(documents_fts)
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE documents_fts MATCH ?`
	args := []any{match}
	if opts.Tag != "" {
		sqlText += ` AND EXISTS (SELECT 1 FROM tags t WHERE t.document_id = d.id AND t.name = ?)`
		args = append(args, opts.Tag)
	}
	sqlText += ` ORDER BY bm25(documents_fts) LIMIT ?`
	args = append(args, opts.EffectiveLimit())

	rows, err := s.store.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var rank float64
		if err := rows.Scan(&r.DocumentID, &r.Filename, &r.Lang,
			&r.SnippetText, &r.SnippetTranslated, &rank); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		// bm25 is lower-is-better; flip it so callers can sort descending.
		r.Score = -rank
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// ==================== Index Sync ====================

type ftsFields struct {
	filename, text, translated string
}

func indexedFields(ctx context.Context, tx *sql.Tx, id int64) (ftsFields, error) {
	var f ftsFields
	err := tx.QueryRowContext(ctx,
		"SELECT filename, text, translated FROM documents WHERE id = ?", id,
	).Scan(&f.filename, &f.text, &f.translated)
	if errors.Is(err, sql.ErrNoRows) {
		return f, domain.ErrNotFound
	}
	if err != nil {
		return f, fmt.Errorf("reading indexed fields: %w", err)
	}
	return f, nil
}

func indexInsert(ctx context.Context, tx *sql.Tx, id int64, filename, text, translated string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts (rowid, filename, text, translated) VALUES (?, ?, ?, ?)
	`, id, filename, text, translated)
	if err != nil {
		return fmt.Errorf("indexing document %d: %w", id, err)
	}
	return nil
}

// indexDelete removes an entry from the external-content index. FTS5 needs
// the previously indexed values to remove their tokens.
func indexDelete(ctx context.Context, tx *sql.Tx, id int64, old ftsFields) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts (documents_fts, rowid, filename, text, translated)
		VALUES ('delete', ?, ?, ?, ?)
	`, id, old.filename, old.text, old.translated)
	if err != nil {
		return fmt.Errorf("unindexing document %d: %w", id, err)
	}
	return nil
}

// ==================== Helper Functions ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.Lang, &doc.Text,
		&doc.Translated, &doc.ContentHash, &doc.PageCount, &doc.Size,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}
