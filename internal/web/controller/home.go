package controller

import (
	"html/template"
	"io"
	"log"
	"net/http"

	"warren/internal/activity"
	"warren/internal/auth"
	"warren/internal/web/renderer"
	"warren/internal/web/viewmodels"
	"warren/internal/wiki"
)

// Home provides the home page, the global feed and the Markdown
// preview endpoint.
type Home struct {
	WikiStore    *wiki.Store
	ActivityRepo *activity.Repository
	FeedLimit    int
	Templates    map[string]*template.Template
}

// Register registers the home routes.
func (h *Home) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /feed", h.feed)
	mux.HandleFunc("POST /_preview", h.preview)
}

func (h *Home) home(w http.ResponseWriter, r *http.Request) {
	pages, err := h.WikiStore.ListRecent(r.Context(), 10)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	feed, err := h.ActivityRepo.GlobalFeed(r.Context(), h.FeedLimit)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	data := viewmodels.PageData{
		RecentPages: pages,
		Feed:        feed,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	}
	if err := h.Templates["home.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (h *Home) feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.ActivityRepo.GlobalFeed(r.Context(), h.FeedLimit)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	data := viewmodels.PageData{
		Feed:        feed,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	}
	if err := h.Templates["feed.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

// preview renders posted Markdown for the editor's live preview. Wiki
// links resolve in the current user's namespace.
func (h *Home) preview(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	html, err := renderer.Render(string(body), user.Username)
	if err != nil {
		log.Printf("Error rendering preview: %v", err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
