package auth_test

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warren/internal/activity"
	"warren/internal/auth"
	"warren/internal/database"
)

func newTestService(t *testing.T) (*auth.Service, *activity.Repository, *sql.DB) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "warren.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	feed := activity.NewRepository(db)
	return auth.NewService(db, auth.NewRepository(db), feed), feed, db
}

func TestRegisterUserRecordsSignup(t *testing.T) {
	svc, feed, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "alice", "Alice", "hunter2-hunter2")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.DisplayName)

	items, err := feed.FeedForUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, activity.KindSignup, items[0].Kind)
	assert.Nil(t, items[0].PageID)
}

func TestRegisterUserIsAtomic(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	// Breaking the activity table makes the signup event fail; the
	// user and identity rows must roll back with it.
	_, err := db.ExecContext(ctx, "DROP TABLE activity")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "alice", "", "some-password")
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", "alice").Scan(&count))
	assert.Zero(t, count)
}

func TestRegisterUserDefaultsDisplayName(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.RegisterUser(context.Background(), "bob", "", "some-password")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.DisplayName)
}

func TestRegisterUserRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "alice", "", "some-password")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "alice", "", "other-password")
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestRegisterUserValidatesUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, username := range []string{"", "a", "Has Spaces", "UPPER", "login", "feed", "static", "new"} {
		_, err := svc.RegisterUser(ctx, username, "", "some-password")
		assert.ErrorIs(t, err, auth.ErrBadUsername, "username %q", username)
	}
}

func TestLogin(t *testing.T) {
	require.NoError(t, auth.InitSessionStore("0123456789abcdef0123456789abcdef"))
	svc, _, _ := newTestService(t)

	_, err := svc.RegisterUser(context.Background(), "alice", "", "correct-horse")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/login", nil)

	_, err = svc.Login(w, r, "alice", "wrong-password")
	assert.Error(t, err)

	_, err = svc.Login(w, r, "nobody", "correct-horse")
	assert.Error(t, err)

	user, err := svc.Login(w, r, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, w.Result().Cookies())
}
