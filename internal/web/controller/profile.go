package controller

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"warren/internal/activity"
	"warren/internal/auth"
	"warren/internal/follow"
	"warren/internal/web/viewmodels"
	"warren/internal/wiki"
)

// Profile provides user profile, per-user activity and follow
// handlers.
type Profile struct {
	AuthRepo     *auth.Repository
	WikiStore    *wiki.Store
	ActivityRepo *activity.Repository
	FollowRepo   *follow.Repository
	FeedLimit    int
	Templates    map[string]*template.Template
}

// Register registers the profile routes.
func (p *Profile) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{username}", p.profile)
	mux.HandleFunc("GET /{username}/activity", p.activity)
	mux.HandleFunc("POST /follow", p.follow)
	mux.HandleFunc("POST /unfollow", p.unfollow)
}

func (p *Profile) render(w http.ResponseWriter, name string, data viewmodels.PageData) {
	if err := p.Templates[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Profile) profile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profileUser, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	pages, err := p.WikiStore.ListByOwner(r.Context(), profileUser.ID)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	data := viewmodels.PageData{
		ProfileUser: *profileUser,
		Pages:       pages,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	}

	if user != nil && user.ID == profileUser.ID {
		data.IsOwnProfile = true
		if data.Following, err = p.FollowRepo.Following(r.Context(), user.ID); err != nil {
			log.Println(err)
			http.Error(w, "Internal Server Error", 500)
			return
		}
		if data.Followers, err = p.FollowRepo.Followers(r.Context(), user.ID); err != nil {
			log.Println(err)
			http.Error(w, "Internal Server Error", 500)
			return
		}
	} else if user != nil {
		if data.IsFollowing, err = p.FollowRepo.IsFollowing(r.Context(), user.ID, profileUser.ID); err != nil {
			log.Println(err)
			http.Error(w, "Internal Server Error", 500)
			return
		}
		if data.Mutual, err = p.FollowRepo.Mutual(r.Context(), user.ID, profileUser.ID); err != nil {
			log.Println(err)
			http.Error(w, "Internal Server Error", 500)
			return
		}
	}

	p.render(w, "profile.html", data)
}

func (p *Profile) activity(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profileUser, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	feed, err := p.ActivityRepo.FeedForUser(r.Context(), profileUser.ID, p.FeedLimit)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	p.render(w, "activity.html", viewmodels.PageData{
		ProfileUser: *profileUser,
		Feed:        feed,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Profile) follow(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username := r.FormValue("username")
	target, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = p.FollowRepo.Follow(r.Context(), user.ID, target.ID)
	switch {
	case errors.Is(err, follow.ErrSelfFollow), errors.Is(err, follow.ErrAlreadyFollowing):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	http.Redirect(w, r, "/"+username, http.StatusSeeOther)
}

func (p *Profile) unfollow(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username := r.FormValue("username")
	target, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = p.FollowRepo.Unfollow(r.Context(), user.ID, target.ID)
	switch {
	case errors.Is(err, follow.ErrNotFollowing):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	http.Redirect(w, r, "/"+username, http.StatusSeeOther)
}
