// Package revision is the append-only log of page content snapshots.
// Revisions are never updated or deleted individually; they disappear
// only when their page cascades away.
package revision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warren/internal/models"
)

// ErrNotFound is returned when no revision with the requested sequence
// number exists for the page.
var ErrNotFound = errors.New("revision not found")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides access to the revision log.
type Repository struct {
	db DBTX
}

// NewRepository creates a new revision repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository that runs inside tx, so a
// page mutation can append its snapshot atomically with the page
// update.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Append stores a snapshot of content as the next revision of the
// page. The sequence number is assigned in the INSERT itself so two
// appends can never share one.
func (r *Repository) Append(ctx context.Context, pageID int, content string) (models.Revision, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO revisions (page_id, seq, content)
		 SELECT ?1, COALESCE(MAX(seq), 0) + 1, ?2 FROM revisions WHERE page_id = ?1`,
		pageID, content)
	if err != nil {
		return models.Revision{}, fmt.Errorf("error appending revision: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Revision{}, fmt.Errorf("error reading revision id: %w", err)
	}

	var rev models.Revision
	err = r.db.QueryRowContext(ctx,
		"SELECT id, page_id, seq, content, created_at FROM revisions WHERE id = ?", id).
		Scan(&rev.ID, &rev.PageID, &rev.Seq, &rev.Content, &rev.CreatedAt)
	if err != nil {
		return models.Revision{}, fmt.Errorf("error reading back revision: %w", err)
	}
	return rev, nil
}

// ListForPage returns all revisions of a page, most recent first.
func (r *Repository) ListForPage(ctx context.Context, pageID int) ([]models.Revision, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, page_id, seq, content, created_at FROM revisions WHERE page_id = ? ORDER BY seq DESC",
		pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(&rev.ID, &rev.PageID, &rev.Seq, &rev.Content, &rev.CreatedAt); err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// Get returns the revision of a page with the given sequence number.
func (r *Repository) Get(ctx context.Context, pageID, seq int) (models.Revision, error) {
	var rev models.Revision
	err := r.db.QueryRowContext(ctx,
		"SELECT id, page_id, seq, content, created_at FROM revisions WHERE page_id = ? AND seq = ?",
		pageID, seq).
		Scan(&rev.ID, &rev.PageID, &rev.Seq, &rev.Content, &rev.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Revision{}, ErrNotFound
	}
	if err != nil {
		return models.Revision{}, err
	}
	return rev, nil
}
