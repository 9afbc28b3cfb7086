package controller

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"warren/internal/auth"
	"warren/internal/models"
	"warren/internal/revision"
	"warren/internal/web/renderer"
	"warren/internal/web/viewmodels"
	"warren/internal/wiki"
)

// Page provides page handlers.
type Page struct {
	WikiStore    *wiki.Store
	RevisionRepo *revision.Repository
	AuthRepo     *auth.Repository
	Templates    map[string]*template.Template
}

// Register registers the page routes.
func (p *Page) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /new", p.new)
	mux.HandleFunc("POST /new", p.create)
	mux.HandleFunc("GET /{username}/wiki/{slug}", p.view)
	mux.HandleFunc("GET /{username}/edit/{slug}", p.edit)
	mux.HandleFunc("POST /{username}/edit/{slug}", p.save)
	mux.HandleFunc("GET /{username}/history/{slug}", p.history)
	mux.HandleFunc("GET /{username}/diff/{slug}", p.diff)
	mux.HandleFunc("GET /{username}/restore/{slug}/{seq}", p.restoreConfirm)
	mux.HandleFunc("POST /{username}/restore/{slug}/{seq}", p.restore)
	mux.HandleFunc("GET /{username}/delete/{slug}", p.deleteConfirm)
	mux.HandleFunc("POST /{username}/delete/{slug}", p.delete)
}

// storeError translates page-store errors into HTTP responses.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wiki.ErrPageNotFound), errors.Is(err, revision.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, wiki.ErrNotOwner):
		http.Error(w, "You can only change your own pages.", http.StatusForbidden)
	case errors.Is(err, wiki.ErrEmptyTitle), errors.Is(err, wiki.ErrRevisionMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
	}
}

func isOwner(user *models.User, page models.Page) bool {
	return user != nil && user.ID == page.OwnerID
}

// lookup resolves the page and its author from the request path.
func (p *Page) lookup(w http.ResponseWriter, r *http.Request) (models.Page, *models.User, bool) {
	username := r.PathValue("username")
	slug := r.PathValue("slug")

	page, err := p.WikiStore.GetBySlug(r.Context(), username, slug)
	if err != nil {
		storeError(w, r, err)
		return models.Page{}, nil, false
	}

	author, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return models.Page{}, nil, false
	}
	return page, author, true
}

func (p *Page) render(w http.ResponseWriter, name string, data viewmodels.PageData) {
	if err := p.Templates[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) view(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	slug := r.PathValue("slug")

	page, err := p.WikiStore.GetBySlug(r.Context(), username, slug)
	if err != nil {
		// A dangling wiki link into the viewer's own namespace offers
		// to create the page; links into someone else's namespace 404.
		user := auth.UserFromContext(r.Context())
		if errors.Is(err, wiki.ErrPageNotFound) && user != nil && user.Username == username {
			title := strings.ReplaceAll(slug, "-", " ")
			http.Redirect(w, r, "/new?title="+url.QueryEscape(title), http.StatusSeeOther)
			return
		}
		storeError(w, r, err)
		return
	}

	author, err := p.AuthRepo.FindUserByUsername(r.Context(), username)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	content, err := renderer.Render(page.Content, author.Username)
	if err != nil {
		log.Printf("Error rendering page content: %v", err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	p.render(w, "view.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		Content:     content,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) new(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	p.render(w, "new.html", viewmodels.PageData{
		// Pre-filled when a dangling wiki link sent the user here.
		Page:        models.Page{Title: r.URL.Query().Get("title")},
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	title := r.PostFormValue("title")
	content := r.PostFormValue("content")

	page, err := p.WikiStore.Create(r.Context(), user.ID, title, content)
	if err != nil {
		storeError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/%s/wiki/%s", user.Username, page.Slug), http.StatusSeeOther)
}

func (p *Page) edit(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	user := auth.UserFromContext(r.Context())
	if !isOwner(user, page) {
		http.Error(w, "You can only change your own pages.", http.StatusForbidden)
		return
	}
	p.render(w, "edit.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) save(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	title := r.PostFormValue("title")
	content := r.PostFormValue("content")

	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := p.WikiStore.Edit(r.Context(), user.ID, page.ID, title, content); err != nil {
		storeError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/%s/wiki/%s", author.Username, page.Slug), http.StatusSeeOther)
}

func (p *Page) history(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	revisions, err := p.RevisionRepo.ListForPage(r.Context(), page.ID)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	user := auth.UserFromContext(r.Context())
	p.render(w, "history.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		Revisions:   revisions,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) diff(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	fromSeq, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "Invalid 'from' revision", http.StatusBadRequest)
		return
	}
	toSeq, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid 'to' revision", http.StatusBadRequest)
		return
	}

	from, err := p.RevisionRepo.Get(r.Context(), page.ID, fromSeq)
	if err != nil {
		storeError(w, r, err)
		return
	}
	to, err := p.RevisionRepo.Get(r.Context(), page.ID, toSeq)
	if err != nil {
		storeError(w, r, err)
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from.Content, to.Content, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buff bytes.Buffer
	for _, diff := range diffs {
		text := template.HTMLEscapeString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			buff.WriteString("<ins>" + text + "</ins>")
		case diffmatchpatch.DiffDelete:
			buff.WriteString("<del>" + text + "</del>")
		case diffmatchpatch.DiffEqual:
			buff.WriteString("<span>" + text + "</span>")
		}
	}

	user := auth.UserFromContext(r.Context())
	p.render(w, "diff.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		Content:     template.HTML(buff.String()),
		FromSeq:     fromSeq,
		ToSeq:       toSeq,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) restoreConfirm(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	seq, err := strconv.Atoi(r.PathValue("seq"))
	if err != nil {
		http.Error(w, "Invalid revision", http.StatusBadRequest)
		return
	}

	rev, err := p.RevisionRepo.Get(r.Context(), page.ID, seq)
	if err != nil {
		storeError(w, r, err)
		return
	}

	user := auth.UserFromContext(r.Context())
	if !isOwner(user, page) {
		http.Error(w, "You can only change your own pages.", http.StatusForbidden)
		return
	}
	p.render(w, "restore.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		Revision:    rev,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) restore(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	seq, err := strconv.Atoi(r.PathValue("seq"))
	if err != nil {
		http.Error(w, "Invalid revision", http.StatusBadRequest)
		return
	}

	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := p.WikiStore.Restore(r.Context(), user.ID, page.ID, seq); err != nil {
		storeError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/%s/wiki/%s", author.Username, page.Slug), http.StatusSeeOther)
}

func (p *Page) deleteConfirm(w http.ResponseWriter, r *http.Request) {
	page, author, ok := p.lookup(w, r)
	if !ok {
		return
	}

	user := auth.UserFromContext(r.Context())
	if !isOwner(user, page) {
		http.Error(w, "You can only change your own pages.", http.StatusForbidden)
		return
	}
	p.render(w, "delete.html", viewmodels.PageData{
		Page:        page,
		Author:      *author,
		CurrentUser: user,
		IsLoggedIn:  user != nil,
	})
}

func (p *Page) delete(w http.ResponseWriter, r *http.Request) {
	page, _, ok := p.lookup(w, r)
	if !ok {
		return
	}

	user := auth.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := p.WikiStore.Delete(r.Context(), user.ID, page.ID); err != nil {
		storeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/"+user.Username, http.StatusSeeOther)
}
