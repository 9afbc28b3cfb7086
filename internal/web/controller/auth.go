package controller

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"warren/internal/auth"
	"warren/internal/web/viewmodels"
)

// Auth provides signup, login and logout handlers.
type Auth struct {
	AuthService *auth.Service
	Templates   map[string]*template.Template
}

// Register registers the auth routes.
func (a *Auth) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", a.loginGet)
	mux.HandleFunc("POST /login", a.loginPost)
	mux.HandleFunc("GET /logout", a.logout)
	mux.HandleFunc("GET /register", a.registerGet)
	mux.HandleFunc("POST /register", a.registerPost)
}

func (a *Auth) render(w http.ResponseWriter, name string, data viewmodels.PageData) {
	if err := a.Templates[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
	}
}

func (a *Auth) loginGet(w http.ResponseWriter, r *http.Request) {
	a.render(w, "login.html", viewmodels.PageData{})
}

func (a *Auth) loginPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	if _, err := a.AuthService.Login(w, r, username, password); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		a.render(w, "login.html", viewmodels.PageData{Error: "Invalid username or password."})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Auth) logout(w http.ResponseWriter, r *http.Request) {
	a.AuthService.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (a *Auth) registerGet(w http.ResponseWriter, r *http.Request) {
	a.render(w, "register.html", viewmodels.PageData{})
}

func (a *Auth) registerPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	displayName := r.FormValue("display_name")
	password := r.FormValue("password")

	_, err := a.AuthService.RegisterUser(r.Context(), username, displayName, password)
	switch {
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, auth.ErrBadUsername):
		w.WriteHeader(http.StatusBadRequest)
		a.render(w, "register.html", viewmodels.PageData{Error: err.Error()})
		return
	case err != nil:
		log.Printf("Error registering user: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}
