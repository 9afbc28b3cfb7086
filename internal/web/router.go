package web

import (
	"net/http"

	"warren/internal/web/controller"
	"warren/internal/web/middleware"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", StaticFileServer()))

	authController := controller.Auth{AuthService: s.authService, Templates: s.templates}
	authController.Register(mux)

	authenticatedMux := http.NewServeMux()

	homeController := controller.Home{
		WikiStore:    s.wikiStore,
		ActivityRepo: s.activityRepo,
		FeedLimit:    s.feedLimit,
		Templates:    s.templates,
	}
	homeController.Register(authenticatedMux)

	pageController := controller.Page{
		WikiStore:    s.wikiStore,
		RevisionRepo: s.revisionRepo,
		AuthRepo:     s.authRepo,
		Templates:    s.templates,
	}
	pageController.Register(authenticatedMux)

	profileController := controller.Profile{
		AuthRepo:     s.authRepo,
		WikiStore:    s.wikiStore,
		ActivityRepo: s.activityRepo,
		FollowRepo:   s.followRepo,
		FeedLimit:    s.feedLimit,
		Templates:    s.templates,
	}
	profileController.Register(authenticatedMux)

	mux.Handle("/", middleware.WithUser(s.authService)(middleware.Auth(s.authService)(authenticatedMux)))

	return middleware.Logging(mux)
}
