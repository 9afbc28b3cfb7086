package web_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warren/internal/auth"
	"warren/internal/database"
	"warren/internal/web"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	require.NoError(t, auth.InitSessionStore("0123456789abcdef0123456789abcdef"))

	db, err := database.New(filepath.Join(t.TempDir(), "warren.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	ts := httptest.NewServer(web.NewServer(db, web.ParseTemplates(), 25))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ts, _ := newTestServer(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginPageIsPublic(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/login")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Log in")
}

func TestRegisterLoginAndCreatePage(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username":     {"alice"},
		"display_name": {"Alice"},
		"password":     {"correct-horse"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"correct-horse"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The home page now renders, with the signup in the feed.
	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "joined warren")

	// Create a page and land on its view.
	resp, err = client.PostForm(ts.URL+"/new", url.Values{
		"title":   {"My Notes"},
		"content": {"# Hello\n\nFirst page."},
	})
	require.NoError(t, err)
	got := body(t, resp)
	assert.Contains(t, got, "My Notes")
	assert.Contains(t, got, "First page.")

	// The profile lists it.
	resp, err = client.Get(ts.URL + "/alice")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "/alice/wiki/my-notes")
}

func signupAndLogin(t *testing.T, ts *httptest.Server, client *http.Client, username string) {
	t.Helper()

	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username": {username},
		"password": {"correct-horse"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {"correct-horse"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDanglingLinkOffersToCreatePage(t *testing.T) {
	ts, client := newTestServer(t)
	signupAndLogin(t, ts, client, "alice")

	// A missing page in the viewer's own namespace sends them to the
	// new-page form with the title pre-filled.
	noRedirect := &http.Client{
		Jar: client.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noRedirect.Get(ts.URL + "/alice/wiki/team-notes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/new?title=team+notes", resp.Header.Get("Location"))

	resp, err = client.Get(ts.URL + "/alice/wiki/team-notes")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), `value="team notes"`)

	// A missing page in someone else's namespace stays a 404.
	resp, err = client.Get(ts.URL + "/bob/wiki/team-notes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfirmScreensAreOwnerOnly(t *testing.T) {
	ts, alice := newTestServer(t)
	signupAndLogin(t, ts, alice, "alice")

	resp, err := alice.PostForm(ts.URL+"/new", url.Values{
		"title":   {"My Notes"},
		"content": {"v1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = alice.PostForm(ts.URL+"/alice/edit/my-notes", url.Values{
		"title":   {"My Notes"},
		"content": {"v2"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	bob := &http.Client{Jar: jar}
	signupAndLogin(t, ts, bob, "bob")

	for _, path := range []string{
		"/alice/edit/my-notes",
		"/alice/restore/my-notes/1",
		"/alice/delete/my-notes",
	} {
		resp, err := bob.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "GET %s", path)
	}

	// The owner still sees all three screens.
	for _, path := range []string{
		"/alice/edit/my-notes",
		"/alice/restore/my-notes/1",
		"/alice/delete/my-notes",
	} {
		resp, err := alice.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", path)
	}
}

func TestRegisterRejectsReservedUsername(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username": {"login"},
		"password": {"correct-horse"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
