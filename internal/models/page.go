package models

import "time"

// Page is a wiki page in its owner's namespace. The slug is unique per
// owner and the content column always holds the current Markdown text;
// older states live in the revisions table.
type Page struct {
	ID        int
	OwnerID   int
	Slug      string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
