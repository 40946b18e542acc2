package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/HienH/smas-vibing/internal/locks"
	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
	tu "github.com/HienH/smas-vibing/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://127.0.0.1:3000"

type testApp struct {
	router        chi.Router
	provider      *tu.MockProvider
	oauth         *tu.MockOAuth
	refresher     *tu.MockRefresher
	credentials   *repositories.CredentialRepository
	accountLinks  *repositories.AccountLinkRepository
	links         *repositories.LinkRepository
	contributions *repositories.ContributionRepository
}

func newTestApp(t *testing.T, slugs ...string) *testApp {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	logger := shared.NewLogger(io.Discard)
	locker := locks.NewKeyedMutex()

	app := &testApp{
		provider:      tu.NewMockProvider(),
		oauth:         tu.NewMockOAuth(),
		refresher:     &tu.MockRefresher{},
		credentials:   repositories.NewCredentialRepository(db),
		accountLinks:  repositories.NewAccountLinkRepository(db),
		links:         repositories.NewLinkRepository(db),
		contributions: repositories.NewContributionRepository(db),
	}
	playlists := repositories.NewPlaylistRepository(db)

	next := 0
	app.links.WithGenerator(func() (string, error) {
		if next >= len(slugs) {
			return shared.GenerateSlug()
		}
		next++
		return slugs[next-1], nil
	})

	accounts := tasks.NewAccountService(app.provider, repositories.NewUserRepository(db), app.accountLinks, app.credentials, logger)
	manager := tasks.NewCredentialManager(app.credentials, app.refresher, locker, logger)
	provisioner := tasks.NewProvisioner(app.provider, accounts, manager, playlists, app.links, app.contributions, locker,
		tasks.ProvisionerOpts{BaseURL: testBaseURL, Logger: logger})
	workflow := tasks.NewContributionWorkflow(app.provider, manager, playlists, app.links, app.contributions, locker,
		tasks.WorkflowOpts{TopTracksLimit: 5, TimeRange: "short_term", Logger: logger})

	h := New(Opts{
		Sessions:      server.NewSessions(shared.SessionConfig{Secret: "test-secret", TTLHours: 1, CookieName: "smas_session"}, testBaseURL),
		OAuth:         app.oauth,
		Provider:      app.provider,
		Accounts:      accounts,
		Credentials:   manager,
		Provisioner:   provisioner,
		Workflow:      workflow,
		Playlists:     playlists,
		Links:         app.links,
		Contributions: app.contributions,
		BaseURL:       testBaseURL,
		Logger:        logger,
	})

	app.router = server.NewRouter(logger)
	h.Routes(app.router)
	return app
}

func (a *testApp) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signIn registers a provider user and walks the login and callback endpoints, returning the session cookie.
func (a *testApp) signIn(t *testing.T, accountID, name string, tracks ...services.Track) *http.Cookie {
	t.Helper()

	token := "at-" + accountID
	code := "code-" + accountID
	a.provider.AddUser(token, services.Profile{ID: accountID, DisplayName: name}, tracks...)
	a.oauth.Codes[code] = models.Tokens{AccessToken: token, RefreshToken: "rt-" + accountID, ExpiresAt: time.Now().Add(time.Hour)}

	login := a.do(t, http.MethodGet, "/auth/spotify/login", "")
	require.Equal(t, http.StatusFound, login.Code)
	state := cookieNamed(login.Result().Cookies(), stateCookie)
	require.NotNil(t, state)

	callback := a.do(t, http.MethodGet, "/auth/spotify/callback?state="+url.QueryEscape(state.Value)+"&code="+code, "", state)
	require.Equal(t, http.StatusFound, callback.Code, callback.Body.String())

	session := cookieNamed(callback.Result().Cookies(), "smas_session")
	require.NotNil(t, session)
	return session
}

// provision signs in an owner and loads their dashboard.
func (a *testApp) provision(t *testing.T, accountID, name string) (*http.Cookie, dashboardView) {
	t.Helper()

	session := a.signIn(t, accountID, name)
	rec := a.do(t, http.MethodGet, "/dashboard", "", session)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d dashboardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return session, d
}

// userID resolves the internal user id behind a signed-in Spotify account.
func (a *testApp) userID(t *testing.T, accountID string) string {
	t.Helper()

	link, err := a.accountLinks.GetByAccount(context.Background(), models.ProviderSpotify, accountID)
	require.NoError(t, err)
	return link.UserID
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) server.ErrorBody {
	t.Helper()
	var body server.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func topTracks(n int) []services.Track {
	tracks := make([]services.Track, n)
	for i := range tracks {
		tracks[i] = services.Track{
			ID:     fmt.Sprintf("t%d", i),
			URI:    fmt.Sprintf("spotify:track:t%d", i),
			Name:   fmt.Sprintf("Song %d", i),
			Artist: "Artist",
		}
	}
	return tracks
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	t.Run("login redirects to the consent page with a state cookie", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/auth/spotify/login", "")

		require.Equal(t, http.StatusFound, rec.Code)
		state := cookieNamed(rec.Result().Cookies(), stateCookie)
		require.NotNil(t, state)
		assert.True(t, state.HttpOnly)
		assert.Contains(t, rec.Header().Get("Location"), "state="+url.QueryEscape(state.Value))
	})

	t.Run("callback issues a session and redirects to the dashboard", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.AddUser("at-alice", services.Profile{ID: "alice", DisplayName: "Alice"})
		app.oauth.Codes["good"] = models.Tokens{AccessToken: "at-alice", RefreshToken: "rt-alice", ExpiresAt: time.Now().Add(time.Hour)}

		rec := app.do(t, http.MethodGet, "/auth/spotify/callback?state=s1&code=good", "", &http.Cookie{Name: stateCookie, Value: "s1"})

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
		assert.NotNil(t, cookieNamed(rec.Result().Cookies(), "smas_session"))

		cred, err := app.credentials.Get(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "rt-alice", cred.RefreshToken)
	})

	t.Run("callback honours a local next path", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.AddUser("at-bob", services.Profile{ID: "bob", DisplayName: "Bob"})
		app.oauth.Codes["good"] = models.Tokens{AccessToken: "at-bob", RefreshToken: "rt-bob", ExpiresAt: time.Now().Add(time.Hour)}

		login := app.do(t, http.MethodGet, "/auth/spotify/login?next=/s/abc12345", "")
		state := cookieNamed(login.Result().Cookies(), stateCookie)
		next := cookieNamed(login.Result().Cookies(), nextCookie)
		require.NotNil(t, next)

		rec := app.do(t, http.MethodGet, "/auth/spotify/callback?state="+url.QueryEscape(state.Value)+"&code=good", "", state, next)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/s/abc12345", rec.Header().Get("Location"))
	})

	t.Run("login ignores off-site next paths", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/auth/spotify/login?next=//evil.example", "")
		assert.Nil(t, cookieNamed(rec.Result().Cookies(), nextCookie))
	})

	t.Run("callback rejects a state mismatch", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/auth/spotify/callback?state=other&code=good", "", &http.Cookie{Name: stateCookie, Value: "s1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("callback reports a denied authorization", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/auth/spotify/callback?state=s1&error=access_denied", "", &http.Cookie{Name: stateCookie, Value: "s1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("callback rejects an unknown code", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/auth/spotify/callback?state=s1&code=nope", "", &http.Cookie{Name: stateCookie, Value: "s1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout clears the session cookie", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodPost, "/auth/logout", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		c := cookieNamed(rec.Result().Cookies(), "smas_session")
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)
	})
}

func TestDashboard(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/dashboard", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("provisions once and reuses on reload", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		session, d := app.provision(t, "alice", "Alice")

		assert.Equal(t, "Alice's SMAS playlist", d.Playlist.Name)
		assert.Equal(t, "abc12345", d.Link.Slug)
		assert.Equal(t, testBaseURL+"/s/abc12345", d.ShareURL)
		assert.Empty(t, d.Contributions)

		rec := app.do(t, http.MethodGet, "/dashboard", "", session)
		require.Equal(t, http.StatusOK, rec.Code)
		var again dashboardView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))

		assert.Equal(t, d.Playlist.ID, again.Playlist.ID)
		assert.Equal(t, d.Link.Slug, again.Link.Slug)
		assert.Equal(t, 1, app.provider.CreateCalls)
	})

	t.Run("expired owner credential signs the user out", func(t *testing.T) {
		app := newTestApp(t)
		session := app.signIn(t, "alice", "Alice")

		cred, err := app.credentials.Get(context.Background(), "alice")
		require.NoError(t, err)
		_, err = app.credentials.Put(context.Background(), cred.UserID, "alice", models.Tokens{
			AccessToken: "old", RefreshToken: "rt-alice", ExpiresAt: time.Now().Add(-time.Minute),
		})
		require.NoError(t, err)
		app.refresher.Err = &shared.RefreshError{Kind: shared.RefreshErrorKind, StatusCode: 400, Err: errors.New("invalid_grant")}

		rec := app.do(t, http.MethodGet, "/dashboard", "", session)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "sign in required", decodeError(t, rec).Error)
		c := cookieNamed(rec.Result().Cookies(), "smas_session")
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)
	})
}

func TestSharing(t *testing.T) {
	t.Run("public link metadata", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		app.provision(t, "alice", "Alice")

		for _, path := range []string{"/sharing/abc12345", "/s/abc12345"} {
			rec := app.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code, path)

			var link publicLinkView
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
			assert.Equal(t, "Alice", link.OwnerName)
			assert.Equal(t, "Alice's SMAS playlist", link.PlaylistName)
			assert.Equal(t, "abc12345", link.Slug)
		}
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodGet, "/sharing/zzzzzzzz", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create-link returns the active link", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		session, d := app.provision(t, "alice", "Alice")

		rec := app.do(t, http.MethodPost, "/sharing/create-link", `{"playlistId":"`+d.Playlist.ID+`"}`, session)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body map[string]linkView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "abc12345", body["link"].Slug)
		assert.Equal(t, testBaseURL+"/s/abc12345", body["link"].URL)
	})

	t.Run("create-link validation", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		_, d := app.provision(t, "alice", "Alice")
		bob := app.signIn(t, "bob", "Bob")
		alice := app.signIn(t, "alice", "Alice")

		tc := []struct {
			name    string
			body    string
			session *http.Cookie
			status  int
		}{
			{name: "missing playlist id", body: `{}`, session: alice, status: http.StatusBadRequest},
			{name: "unknown field", body: `{"playlistId":"x","color":"red"}`, session: alice, status: http.StatusBadRequest},
			{name: "unknown playlist", body: `{"playlistId":"nope"}`, session: alice, status: http.StatusNotFound},
			{name: "not the owner", body: `{"playlistId":"` + d.Playlist.ID + `"}`, session: bob, status: http.StatusForbidden},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				rec := app.do(t, http.MethodPost, "/sharing/create-link", tt.body, tt.session)
				assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			})
		}

		rec := app.do(t, http.MethodPost, "/sharing/create-link", `{"playlistId":"`+d.Playlist.ID+`"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoke hides the slug and create-link issues a new one", func(t *testing.T) {
		app := newTestApp(t, "abc12345", "def67890")
		session, d := app.provision(t, "alice", "Alice")
		bob := app.signIn(t, "bob", "Bob")

		rec := app.do(t, http.MethodPost, "/sharing/abc12345/revoke", "", bob)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPost, "/sharing/abc12345/revoke", "", session)
		require.Equal(t, http.StatusNoContent, rec.Code)

		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/sharing/abc12345", "").Code)
		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPost, "/sharing/abc12345/revoke", "", session).Code)

		rec = app.do(t, http.MethodPost, "/sharing/create-link", `{"playlistId":"`+d.Playlist.ID+`","ownerName":"Ali"}`, session)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body map[string]linkView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "def67890", body["link"].Slug)
		assert.Equal(t, "Ali", body["link"].OwnerName)
	})
}

func TestTopTracks(t *testing.T) {
	app := newTestApp(t)
	session := app.signIn(t, "bob", "Bob", topTracks(7)...)

	rec := app.do(t, http.MethodGet, "/me/top-tracks", "", session)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tracks []trackView `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tracks, 5)
	assert.Equal(t, "spotify:track:t0", body.Tracks[0].URI)
}

func TestContribute(t *testing.T) {
	t.Run("first contribution succeeds and a repeat is blocked", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		alice, d := app.provision(t, "alice", "Alice")
		bob := app.signIn(t, "bob", "Bob", topTracks(5)...)

		rec := app.do(t, http.MethodPost, "/contribute", `{"linkSlug":"abc12345"}`, bob)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result contributeView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, app.userID(t, "bob"), result.Contribution.ContributorID)
		assert.Equal(t, "Bob", result.Contribution.ContributorName)
		assert.Len(t, result.Contribution.Tracks, 5)
		assert.Equal(t, models.CooldownPeriod, result.Contribution.ExpiresAt.Sub(result.Contribution.CreatedAt))

		calls := app.provider.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "at-alice", calls[0].Token)

		rec = app.do(t, http.MethodPost, "/contribute", `{"playlistId":"`+d.Playlist.ID+`"}`, bob)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		body := decodeError(t, rec)
		details, ok := body.Details.(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 28, details["daysRemaining"])
		assert.NotEmpty(t, details["expiresAt"])
		assert.Len(t, app.provider.Calls(), 1)

		rec = app.do(t, http.MethodGet, "/playlists/"+d.Playlist.ID+"/contributions", "", alice)
		require.Equal(t, http.StatusOK, rec.Code)
		var list struct {
			Contributions []contributionView `json:"contributions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list.Contributions, 1)
		assert.Equal(t, app.userID(t, "bob"), list.Contributions[0].ContributorID)

		rec = app.do(t, http.MethodGet, "/playlists/"+d.Playlist.ID+"/contributions", "", bob)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("contributes only the selected tracks", func(t *testing.T) {
		app := newTestApp(t, "abc12345")
		app.provision(t, "alice", "Alice")
		bob := app.signIn(t, "bob", "Bob", topTracks(5)...)

		rec := app.do(t, http.MethodPost, "/contribute", `{"linkSlug":"abc12345","trackUris":["spotify:track:t1","spotify:track:t3"]}`, bob)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		calls := app.provider.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"spotify:track:t1", "spotify:track:t3"}, calls[0].URIs)
	})

	t.Run("outcomes map to status codes", func(t *testing.T) {
		tc := []struct {
			name   string
			body   string
			setup  func(t *testing.T, app *testApp)
			tracks int
			status int
		}{
			{name: "missing target", body: `{}`, tracks: 5, status: http.StatusBadRequest},
			{name: "malformed slug", body: `{"linkSlug":"NOT-A-SLUG"}`, tracks: 5, status: http.StatusNotFound},
			{name: "unknown slug", body: `{"linkSlug":"zzzzzzzz"}`, tracks: 5, status: http.StatusNotFound},
			{name: "no top tracks", body: `{"linkSlug":"abc12345"}`, tracks: 0, status: http.StatusUnprocessableEntity},
			{
				name:   "owner credential cannot be refreshed",
				body:   `{"linkSlug":"abc12345"}`,
				tracks: 5,
				status: http.StatusInternalServerError,
				setup: func(t *testing.T, app *testApp) {
					cred, err := app.credentials.Get(context.Background(), "alice")
					require.NoError(t, err)
					_, err = app.credentials.Put(context.Background(), cred.UserID, "alice", models.Tokens{
						AccessToken: "old", RefreshToken: "rt-alice", ExpiresAt: time.Now().Add(-time.Minute),
					})
					require.NoError(t, err)
					app.refresher.Err = &shared.RefreshError{Kind: shared.RefreshErrorKind, StatusCode: 400, Err: errors.New("invalid_grant")}
				},
			},
			{
				name:   "spotify rejects the mutation",
				body:   `{"linkSlug":"abc12345"}`,
				tracks: 5,
				status: http.StatusInternalServerError,
				setup: func(t *testing.T, app *testApp) {
					app.provider.AddErr = &services.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
				},
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				app := newTestApp(t, "abc12345")
				app.provision(t, "alice", "Alice")
				bob := app.signIn(t, "bob", "Bob", topTracks(tt.tracks)...)
				if tt.setup != nil {
					tt.setup(t, app)
				}

				rec := app.do(t, http.MethodPost, "/contribute", tt.body, bob)
				assert.Equal(t, tt.status, rec.Code, rec.Body.String())

				recorded, err := app.contributions.ListByContributor(context.Background(), app.userID(t, "bob"))
				require.NoError(t, err)
				assert.Empty(t, recorded)
			})
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodPost, "/contribute", `{"linkSlug":"abc12345"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		name   string
		err    error
		status int
	}{
		{name: "cooldown", err: &shared.CooldownError{ExpiresAt: time.Now(), DaysRemaining: 3}, status: http.StatusTooManyRequests},
		{name: "link invalid", err: shared.ErrLinkInvalid, status: http.StatusNotFound},
		{name: "no tracks", err: shared.ErrNoTracksAvailable, status: http.StatusUnprocessableEntity},
		{name: "owner credential", err: fmt.Errorf("%w: %w", shared.ErrOwnerCredentialExpired, &shared.RefreshError{Kind: shared.RefreshErrorKind}), status: http.StatusInternalServerError},
		{name: "mutation", err: fmt.Errorf("%w: boom", shared.ErrExternalMutation), status: http.StatusInternalServerError},
		{name: "rate limited", err: fmt.Errorf("%w: retry later", shared.ErrRateLimited), status: http.StatusInternalServerError},
		{name: "api request", err: fmt.Errorf("%w: unreachable", shared.ErrAPIRequest), status: http.StatusInternalServerError},
		{name: "recording", err: fmt.Errorf("%w: disk full", shared.ErrRecordingFailed), status: http.StatusInternalServerError},
		{name: "slug exhaustion", err: shared.ErrSlugGenerationExhausted, status: http.StatusInternalServerError},
		{name: "invalid input", err: shared.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "missing argument", err: shared.ErrMissingArgument, status: http.StatusBadRequest},
		{name: "not authenticated", err: shared.ErrNotAuthenticated, status: http.StatusUnauthorized},
		{name: "forbidden", err: shared.ErrForbidden, status: http.StatusForbidden},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			status, msg, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}
