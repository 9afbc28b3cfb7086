package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"net/http"
	"regexp"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"warren/internal/activity"
	"warren/internal/models"
)

const sessionName = "warren-session"

// Store will hold the session store.
var Store *sessions.CookieStore

func InitSessionStore(sessionKey string) error {
	if len(sessionKey) < 32 {
		return errors.New("session key must be at least 32 characters long")
	}
	Store = sessions.NewCookieStore([]byte(sessionKey))
	Store.Options.HttpOnly = true
	Store.Options.Path = "/"
	Store.Options.SameSite = http.SameSiteLaxMode // Protect against CSRF
	return nil
}

func init() {
	gob.Register(&models.User{})
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,31}$`)

// Route prefixes a username would shadow.
var reservedUsernames = map[string]bool{
	"login": true, "logout": true, "register": true,
	"new": true, "feed": true, "follow": true, "unfollow": true,
	"static": true, "_preview": true,
}

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrBadUsername is returned when a username cannot serve as a
	// wiki namespace.
	ErrBadUsername = errors.New("username must be 2-32 lowercase letters, digits, - or _")
)

type ctxKey int

const userKey ctxKey = 0

// UserFromContext returns the user WithUser stored on the request, or
// nil when the request is anonymous.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// Service provides authentication-related services.
type Service struct {
	db   *sql.DB
	Repo *Repository
	Feed *activity.Repository
}

// NewService creates a new authentication service. The activity
// repository is called explicitly on signup; there is no implicit
// event dispatch anywhere.
func NewService(db *sql.DB, repo *Repository, feed *activity.Repository) *Service {
	return &Service{db: db, Repo: repo, Feed: feed}
}

// RegisterUser creates a new user and records the signup in the
// activity feed.
func (s *Service) RegisterUser(ctx context.Context, username, displayName, password string) (*models.User, error) {
	if !usernamePattern.MatchString(username) || reservedUsernames[username] {
		return nil, ErrBadUsername
	}
	if _, err := s.Repo.FindUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordHash := string(hashedPassword)

	if displayName == "" {
		displayName = username
	}
	user := &models.User{
		Username:    username,
		DisplayName: displayName,
	}
	identity := &models.Identity{
		Provider:       "local",
		ProviderUserID: username,
		PasswordHash:   &passwordHash,
	}

	// User, identity and signup event land or fail together.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.Repo.WithTx(tx).CreateUser(ctx, user, identity); err != nil {
		return nil, err
	}
	_, err = s.Feed.WithTx(tx).Record(ctx, user.ID, activity.KindSignup, nil, "User "+username+" signed up")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and creates a session.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, username, password string) (*models.User, error) {
	user, err := s.Repo.FindUserByUsername(r.Context(), username)
	if err != nil {
		return nil, err
	}

	identity, err := s.Repo.FindIdentityByProvider(r.Context(), "local", username)
	if err != nil {
		return nil, err
	}

	if identity.PasswordHash == nil {
		return nil, errors.New("user has no password set")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*identity.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	session, _ := Store.Get(r, sessionName)
	session.Values["user"] = user

	// Set Secure based on the request scheme or X-Forwarded-Proto, for
	// correct behavior behind reverse proxies.
	session.Options.Secure = r.URL.Scheme == "https" || r.Header.Get("X-Forwarded-Proto") == "https"

	session.Save(r, w)

	return user, nil
}

// Logout destroys a user's session.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	delete(session.Values, "user")

	session.Options.Secure = r.URL.Scheme == "https" || r.Header.Get("X-Forwarded-Proto") == "https"

	session.Save(r, w)
}

// GetCurrentUser returns the currently logged-in user.
func (s *Service) GetCurrentUser(r *http.Request) *models.User {
	session, _ := Store.Get(r, sessionName)
	if user, ok := session.Values["user"].(*models.User); ok {
		return user
	}
	return nil
}

// RequireLogin redirects anonymous requests to the login page.
func (s *Service) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.GetCurrentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser adds the current user to the request context.
func (s *Service) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.GetCurrentUser(r)
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
