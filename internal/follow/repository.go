// Package follow stores the social graph between users.
package follow

import (
	"context"
	"database/sql"
	"errors"

	"warren/internal/models"
)

var (
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned for a duplicate follow.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrNotFollowing is returned when unfollowing a user who was
	// never followed.
	ErrNotFollowing = errors.New("not following")
)

// Repository provides access to the follow storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new follow repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Follow makes follower follow followee.
func (r *Repository) Follow(ctx context.Context, followerID, followeeID int) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	following, err := r.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if following {
		return ErrAlreadyFollowing
	}

	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO follows (follower_id, followee_id) VALUES (?, ?)", followerID, followeeID)
	return err
}

// Unfollow removes the relationship.
func (r *Repository) Unfollow(ctx context.Context, followerID, followeeID int) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?", followerID, followeeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing reports whether follower follows followee.
func (r *Repository) IsFollowing(ctx context.Context, followerID, followeeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?",
		followerID, followeeID).Scan(&n)
	return n > 0, err
}

// Following returns the users that userID follows.
func (r *Repository) Following(ctx context.Context, userID int) ([]models.User, error) {
	return r.queryUsers(ctx,
		`SELECT u.id, u.username, u.display_name, u.created_at
		 FROM follows f JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = ? ORDER BY u.username`, userID)
}

// Followers returns the users that follow userID.
func (r *Repository) Followers(ctx context.Context, userID int) ([]models.User, error) {
	return r.queryUsers(ctx,
		`SELECT u.id, u.username, u.display_name, u.created_at
		 FROM follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = ? ORDER BY u.username`, userID)
}

// Mutual returns the users both a and b follow.
func (r *Repository) Mutual(ctx context.Context, aID, bID int) ([]models.User, error) {
	return r.queryUsers(ctx,
		`SELECT u.id, u.username, u.display_name, u.created_at
		 FROM follows fa
		 JOIN follows fb ON fb.followee_id = fa.followee_id AND fb.follower_id = ?2
		 JOIN users u ON u.id = fa.followee_id
		 WHERE fa.follower_id = ?1 ORDER BY u.username`, aID, bID)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
