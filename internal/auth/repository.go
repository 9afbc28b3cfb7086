package auth

import (
	"context"
	"database/sql"

	"warren/internal/models"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides access to the user and identity storage.
type Repository struct {
	db DBTX
}

// NewRepository creates a new authentication repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository that runs inside tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// FindUserByUsername finds a user by their username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, display_name, created_at FROM users WHERE username = ?", username).
		Scan(&user.ID, &user.Username, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindIdentityByProvider finds an identity by provider and provider user ID.
func (r *Repository) FindIdentityByProvider(ctx context.Context, provider, providerUserID string) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_user_id, password_hash
		 FROM identities WHERE provider = ? AND provider_user_id = ?`, provider, providerUserID).
		Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID, &identity.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateUser inserts a user and their identity. Callers that need the
// signup to be atomic with other writes run it through WithTx.
func (r *Repository) CreateUser(ctx context.Context, user *models.User, identity *models.Identity) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, display_name) VALUES (?, ?)", user.Username, user.DisplayName)
	if err != nil {
		return err
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(userID)
	identity.UserID = user.ID

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO identities (user_id, provider, provider_user_id, password_hash) VALUES (?, ?, ?, ?)",
		identity.UserID, identity.Provider, identity.ProviderUserID, identity.PasswordHash)
	return err
}
