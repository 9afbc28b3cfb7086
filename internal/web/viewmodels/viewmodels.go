package viewmodels

import (
	"html/template"

	"warren/internal/activity"
	"warren/internal/models"
	"warren/internal/wiki"
)

// PageData is a unified struct holding all possible data for any view.
type PageData struct {
	CurrentUser *models.User
	IsLoggedIn  bool
	Error       string

	// Page views
	Page      models.Page
	Author    models.User
	Content   template.HTML
	Revisions []models.Revision
	Revision  models.Revision
	FromSeq   int
	ToSeq     int

	// Listings and feeds
	RecentPages []wiki.PageSummary
	Pages       []models.Page
	Feed        []activity.FeedItem

	// Profiles
	ProfileUser  models.User
	IsOwnProfile bool
	Following    []models.User
	Followers    []models.User
	Mutual       []models.User
	IsFollowing  bool
}
