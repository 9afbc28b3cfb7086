// Package activity records and serves the append-only feed of user
// actions. Events are written synchronously by the code path that
// performs the action; nothing is dispatched implicitly.
package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warren/internal/models"
)

// The enumerated event kinds. Record rejects anything else.
const (
	KindSignup       = "signup"
	KindPageCreated  = "page_created"
	KindPageEdited   = "page_edited"
	KindPageRestored = "page_restored"
)

// ErrUnknownKind is returned when Record is handed a kind outside the
// enumeration.
var ErrUnknownKind = errors.New("unknown activity kind")

// FeedItem is an activity row joined with the names needed to render
// it: the actor's username and, when the event targets a page, the
// page's title, slug and owner username.
type FeedItem struct {
	models.Activity
	ActorName string
	PageTitle *string
	PageSlug  *string
	PageOwner *string
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides access to the activity feed storage.
type Repository struct {
	db DBTX
}

// NewRepository creates a new activity repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository that runs inside tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

func validKind(kind string) bool {
	switch kind {
	case KindSignup, KindPageCreated, KindPageEdited, KindPageRestored:
		return true
	}
	return false
}

// Record appends one event to the feed. pageID is nil for events
// without a page target (signup).
func (r *Repository) Record(ctx context.Context, actorID int, kind string, pageID *int, details string) (models.Activity, error) {
	if !validKind(kind) {
		return models.Activity{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO activity (user_id, kind, page_id, details) VALUES (?, ?, ?, ?)",
		actorID, kind, pageID, details)
	if err != nil {
		return models.Activity{}, fmt.Errorf("error recording activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Activity{}, fmt.Errorf("error reading activity id: %w", err)
	}

	var act models.Activity
	err = r.db.QueryRowContext(ctx,
		"SELECT id, user_id, kind, page_id, details, created_at FROM activity WHERE id = ?", id).
		Scan(&act.ID, &act.UserID, &act.Kind, &act.PageID, &act.Details, &act.CreatedAt)
	if err != nil {
		return models.Activity{}, fmt.Errorf("error reading back activity: %w", err)
	}
	return act, nil
}

const feedQuery = `
SELECT a.id, a.user_id, a.kind, a.page_id, a.details, a.created_at,
       u.username, p.title, p.slug, pu.username
FROM activity a
JOIN users u ON u.id = a.user_id
LEFT JOIN pages p ON p.id = a.page_id
LEFT JOIN users pu ON pu.id = p.owner_id`

// FeedForUser returns the user's own events, most recent first, capped
// at limit.
func (r *Repository) FeedForUser(ctx context.Context, userID, limit int) ([]FeedItem, error) {
	rows, err := r.db.QueryContext(ctx,
		feedQuery+" WHERE a.user_id = ? ORDER BY a.created_at DESC, a.id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	return scanFeed(rows)
}

// GlobalFeed returns the most recent events across all users.
func (r *Repository) GlobalFeed(ctx context.Context, limit int) ([]FeedItem, error) {
	rows, err := r.db.QueryContext(ctx,
		feedQuery+" ORDER BY a.created_at DESC, a.id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return scanFeed(rows)
}

func scanFeed(rows *sql.Rows) ([]FeedItem, error) {
	defer rows.Close()

	var items []FeedItem
	for rows.Next() {
		var item FeedItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Kind, &item.PageID, &item.Details,
			&item.CreatedAt, &item.ActorName, &item.PageTitle, &item.PageSlug, &item.PageOwner)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
