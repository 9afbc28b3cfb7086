// Package wiki owns page records: slug assignment, the mutation entry
// points, and the side effects each mutation carries (revision
// snapshot, activity event). Each mutation runs in one transaction.
package wiki

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warren/internal/activity"
	"warren/internal/models"
	"warren/internal/revision"
)

var (
	// ErrPageNotFound is returned when a page (or its owner) does not exist.
	ErrPageNotFound = errors.New("page not found")
	// ErrNotOwner is returned when the actor does not own the page it
	// is trying to mutate.
	ErrNotOwner = errors.New("not the page owner")
	// ErrEmptyTitle is returned when a title yields no usable slug.
	ErrEmptyTitle = errors.New("title must contain at least one letter or digit")
	// ErrRevisionMismatch is returned when a restore names a revision
	// that does not belong to the page.
	ErrRevisionMismatch = errors.New("revision does not belong to page")
)

// PageSummary is a page row joined with its author's username, for
// site-wide listings.
type PageSummary struct {
	models.Page
	AuthorName string
}

// Store provides access to the page storage and coordinates the
// revision log and activity feed on every mutation.
type Store struct {
	db        *sql.DB
	revisions *revision.Repository
	activity  *activity.Repository
}

// NewStore creates a new page store.
func NewStore(db *sql.DB, revisions *revision.Repository, feed *activity.Repository) *Store {
	return &Store{db: db, revisions: revisions, activity: feed}
}

const pageColumns = "id, owner_id, slug, title, content, created_at, updated_at"

func scanPage(row *sql.Row) (models.Page, error) {
	var p models.Page
	err := row.Scan(&p.ID, &p.OwnerID, &p.Slug, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Page{}, ErrPageNotFound
	}
	if err != nil {
		return models.Page{}, err
	}
	return p, nil
}

// Create makes a new page in the owner's namespace. The slug is
// derived from the title; on collision a numeric suffix is appended.
// Emits a page_created event.
func (s *Store) Create(ctx context.Context, ownerID int, title, content string) (models.Page, error) {
	base := Slugify(title)
	if base == "" {
		return models.Page{}, ErrEmptyTitle
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Slug uniqueness is read-then-write; the transaction plus the
	// UNIQUE(owner_id, slug) constraint keep it safe.
	rows, err := tx.QueryContext(ctx,
		"SELECT slug FROM pages WHERE owner_id = ?1 AND (slug = ?2 OR slug LIKE ?2 || '-%')",
		ownerID, base)
	if err != nil {
		return models.Page{}, fmt.Errorf("error querying slugs: %w", err)
	}
	taken := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			rows.Close()
			return models.Page{}, err
		}
		taken[slug] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Page{}, err
	}
	slug := UniqueSlug(base, taken)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO pages (owner_id, slug, title, content) VALUES (?, ?, ?, ?)",
		ownerID, slug, title, content)
	if err != nil {
		return models.Page{}, fmt.Errorf("error creating page: %w", err)
	}
	pageID64, err := res.LastInsertId()
	if err != nil {
		return models.Page{}, fmt.Errorf("error reading page id: %w", err)
	}
	pageID := int(pageID64)

	_, err = s.activity.WithTx(tx).Record(ctx, ownerID, activity.KindPageCreated, &pageID,
		fmt.Sprintf("Created page %q", title))
	if err != nil {
		return models.Page{}, err
	}

	page, err := scanPage(tx.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return models.Page{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Page{}, fmt.Errorf("error committing transaction: %w", err)
	}
	return page, nil
}

// Edit overwrites a page's content (and title, when newTitle is
// non-empty; the slug never changes). The pre-edit content is appended
// to the revision log first. Emits a page_edited event.
func (s *Store) Edit(ctx context.Context, actorID, pageID int, newTitle, newContent string) (models.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	page, err := scanPage(tx.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return models.Page{}, err
	}
	if page.OwnerID != actorID {
		return models.Page{}, ErrNotOwner
	}

	if _, err := s.revisions.WithTx(tx).Append(ctx, pageID, page.Content); err != nil {
		return models.Page{}, err
	}

	title := page.Title
	if newTitle != "" {
		title = newTitle
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE pages SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		title, newContent, pageID)
	if err != nil {
		return models.Page{}, fmt.Errorf("error updating page: %w", err)
	}

	_, err = s.activity.WithTx(tx).Record(ctx, actorID, activity.KindPageEdited, &pageID,
		fmt.Sprintf("Edited page %q", title))
	if err != nil {
		return models.Page{}, err
	}

	page, err = scanPage(tx.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return models.Page{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Page{}, fmt.Errorf("error committing transaction: %w", err)
	}
	return page, nil
}

// Restore sets a page's content back to the snapshot at seq. The
// pre-restore content is appended as a new revision first, so nothing
// is ever lost. Emits a page_restored event naming the sequence.
func (s *Store) Restore(ctx context.Context, actorID, pageID, seq int) (models.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	page, err := scanPage(tx.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return models.Page{}, err
	}
	if page.OwnerID != actorID {
		return models.Page{}, ErrNotOwner
	}

	revs := s.revisions.WithTx(tx)
	target, err := revs.Get(ctx, pageID, seq)
	if errors.Is(err, revision.ErrNotFound) {
		return models.Page{}, fmt.Errorf("%w: revision %d", ErrRevisionMismatch, seq)
	}
	if err != nil {
		return models.Page{}, err
	}

	if _, err := revs.Append(ctx, pageID, page.Content); err != nil {
		return models.Page{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE pages SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		target.Content, pageID)
	if err != nil {
		return models.Page{}, fmt.Errorf("error restoring page: %w", err)
	}

	_, err = s.activity.WithTx(tx).Record(ctx, actorID, activity.KindPageRestored, &pageID,
		fmt.Sprintf("Restored page %q to revision %d", page.Title, seq))
	if err != nil {
		return models.Page{}, err
	}

	page, err = scanPage(tx.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return models.Page{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Page{}, fmt.Errorf("error committing transaction: %w", err)
	}
	return page, nil
}

// Delete removes a page. Its revisions and activity entries go with it
// via the schema's cascades.
func (s *Store) Delete(ctx context.Context, actorID, pageID int) error {
	page, err := scanPage(s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
	if err != nil {
		return err
	}
	if page.OwnerID != actorID {
		return ErrNotOwner
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", pageID); err != nil {
		return fmt.Errorf("error deleting page: %w", err)
	}
	return nil
}

// Get returns a page by ID.
func (s *Store) Get(ctx context.Context, pageID int) (models.Page, error) {
	return scanPage(s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", pageID))
}

// GetBySlug resolves a page by its owner's username and slug, the form
// pages take in URLs.
func (s *Store) GetBySlug(ctx context.Context, username, slug string) (models.Page, error) {
	return scanPage(s.db.QueryRowContext(ctx,
		`SELECT p.id, p.owner_id, p.slug, p.title, p.content, p.created_at, p.updated_at
		 FROM pages p JOIN users u ON u.id = p.owner_id
		 WHERE u.username = ? AND p.slug = ?`, username, slug))
}

// ListByOwner returns a user's pages, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID int) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE owner_id = ? ORDER BY created_at DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Slug, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// ListRecent returns the newest pages site-wide with their author
// names, for the home page.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]PageSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.owner_id, p.slug, p.title, p.content, p.created_at, p.updated_at, u.username
		 FROM pages p JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []PageSummary
	for rows.Next() {
		var p PageSummary
		err := rows.Scan(&p.ID, &p.OwnerID, &p.Slug, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
