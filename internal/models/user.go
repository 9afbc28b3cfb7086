package models

import "time"

// User is an account that owns pages and appears in activity feeds.
type User struct {
	ID          int
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// Identity represents a user's authentication method.
type Identity struct {
	ID             int
	UserID         int
	Provider       string
	ProviderUserID string
	PasswordHash   *string
}
