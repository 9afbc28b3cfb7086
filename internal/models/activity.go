package models

import "time"

// Activity is a single append-only feed event. PageID is nil for
// events without a page target (signup).
type Activity struct {
	ID        int
	UserID    int
	Kind      string
	PageID    *int
	Details   string
	CreatedAt time.Time
}
