package models

import "time"

// Revision is an immutable snapshot of a page's content taken just
// before an edit or restore overwrote it. Seq is monotonic per page,
// starting at 1.
type Revision struct {
	ID        int
	PageID    int
	Seq       int
	Content   string
	CreatedAt time.Time
}
