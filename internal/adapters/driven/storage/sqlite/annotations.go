package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

// ==================== Tags ====================

// AddTag attaches a tag. Adding an existing tag is a no-op.
func (s *annotationStore) AddTag(ctx context.Context, docID int64, name string) error {
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tags (document_id, name, created_at) VALUES (?, ?, ?)
			ON CONFLICT(document_id, name) DO NOTHING
		`, docID, name, time.Now().UTC())
		return mapConstraint(err, "adding tag")
	})
}

// RemoveTag detaches a tag.
func (s *annotationStore) RemoveTag(ctx context.Context, docID int64, name string) error {
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM tags WHERE document_id = ? AND name = ?", docID, name)
		if err != nil {
			return fmt.Errorf("removing tag: %w", err)
		}
		return requireAffected(res)
	})
}

// ListTags returns a document's tags in name order.
func (s *annotationStore) ListTags(ctx context.Context, docID int64) ([]domain.Tag, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT document_id, name, created_at FROM tags WHERE document_id = ? ORDER BY name", docID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.DocumentID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ==================== Notes ====================

// AddNote stores a note and writes back its ID.
func (s *annotationStore) AddNote(ctx context.Context, note *domain.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notes (document_id, author, body, created_at) VALUES (?, ?, ?, ?)
		`, note.DocumentID, note.Author, note.Body, note.CreatedAt)
		if err != nil {
			return mapConstraint(err, "adding note")
		}
		note.ID, err = res.LastInsertId()
		return err
	})
}

// DeleteNote removes a note.
func (s *annotationStore) DeleteNote(ctx context.Context, id int64) error {
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting note: %w", err)
		}
		return requireAffected(res)
	})
}

// ListNotes returns a document's notes oldest first.
func (s *annotationStore) ListNotes(ctx context.Context, docID int64) ([]domain.Note, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, author, body, created_at FROM notes
		WHERE document_id = ? ORDER BY id
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.DocumentID, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ==================== Highlights ====================

// AddHighlight stores a highlight and writes back its ID.
func (s *annotationStore) AddHighlight(ctx context.Context, h *domain.Highlight) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (document_id, author, field, start_offset, end_offset, color, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, h.DocumentID, h.Author, h.Field, h.Start, h.End, h.Color, h.CreatedAt)
		if err != nil {
			return mapConstraint(err, "adding highlight")
		}
		h.ID, err = res.LastInsertId()
		return err
	})
}

// DeleteHighlight removes a highlight.
func (s *annotationStore) DeleteHighlight(ctx context.Context, id int64) error {
	return s.store.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM highlights WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting highlight: %w", err)
		}
		return requireAffected(res)
	})
}

// ListHighlights returns a document's highlights in text order.
func (s *annotationStore) ListHighlights(ctx context.Context, docID int64) ([]domain.Highlight, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, author, field, start_offset, end_offset, color, created_at
		FROM highlights WHERE document_id = ? ORDER BY field, start_offset
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying highlights: %w", err)
	}
	defer rows.Close()

	var out []domain.Highlight
	for rows.Next() {
		var h domain.Highlight
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.Author, &h.Field,
			&h.Start, &h.End, &h.Color, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning highlight: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ==================== Helper Functions ====================

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapConstraint turns a foreign key failure (unknown document) into
// domain.ErrNotFound and a check failure into domain.ErrInvalidInput.
func mapConstraint(err error, op string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
