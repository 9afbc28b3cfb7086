package web

import (
	"database/sql"
	"html/template"
	"net/http"

	"warren/internal/activity"
	"warren/internal/auth"
	"warren/internal/follow"
	"warren/internal/revision"
	"warren/internal/wiki"
)

// Server holds the dependencies for the web server.
type Server struct {
	db           *sql.DB
	templates    map[string]*template.Template
	feedLimit    int
	authService  *auth.Service
	authRepo     *auth.Repository
	wikiStore    *wiki.Store
	revisionRepo *revision.Repository
	activityRepo *activity.Repository
	followRepo   *follow.Repository
}

// NewServer creates a new server with the given dependencies.
func NewServer(db *sql.DB, templates map[string]*template.Template, feedLimit int) *Server {
	activityRepo := activity.NewRepository(db)
	revisionRepo := revision.NewRepository(db)
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(db, authRepo, activityRepo)
	wikiStore := wiki.NewStore(db, revisionRepo, activityRepo)
	followRepo := follow.NewRepository(db)

	return &Server{
		db:           db,
		templates:    templates,
		feedLimit:    feedLimit,
		authService:  authService,
		authRepo:     authRepo,
		wikiStore:    wikiStore,
		revisionRepo: revisionRepo,
		activityRepo: activityRepo,
		followRepo:   followRepo,
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}
