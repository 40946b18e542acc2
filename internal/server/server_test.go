package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
	tu "github.com/HienH/smas-vibing/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(now time.Time) *Sessions {
	s := NewSessions(shared.SessionConfig{Secret: "test-secret", TTLHours: 1, CookieName: "smas_session"}, "http://127.0.0.1:3000")
	s.now = func() time.Time { return now }
	return s
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Issue sets a cookie that parses back", func(t *testing.T) {
		s := newTestSessions(now)
		rec := httptest.NewRecorder()

		token, err := s.Issue(rec, "user-1", "alice", "Alice")
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "smas_session", cookies[0].Name)
		assert.Equal(t, token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.False(t, cookies[0].Secure)

		session, err := s.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", session.UserID)
		assert.Equal(t, "alice", session.AccountID)
		assert.Equal(t, "Alice", session.Name)
	})

	t.Run("https base url marks cookies secure", func(t *testing.T) {
		s := NewSessions(shared.SessionConfig{Secret: "x", TTLHours: 1, CookieName: "c"}, "https://smas.example")
		rec := httptest.NewRecorder()
		_, err := s.Issue(rec, "u", "a", "n")
		require.NoError(t, err)
		assert.True(t, rec.Result().Cookies()[0].Secure)
	})

	t.Run("expired session is rejected", func(t *testing.T) {
		s := newTestSessions(now)
		token, err := s.Issue(httptest.NewRecorder(), "user-1", "alice", "Alice")
		require.NoError(t, err)

		s.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = s.Parse(token)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		s := newTestSessions(now)
		other := newTestSessions(now)
		other.secret = []byte("other-secret")

		token, err := other.Issue(httptest.NewRecorder(), "user-1", "alice", "Alice")
		require.NoError(t, err)

		_, err = s.Parse(token)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("unexpected signing method is rejected", func(t *testing.T) {
		s := newTestSessions(now)
		claims := &Session{UserID: "u", AccountID: "a", RegisteredClaims: jwt.RegisteredClaims{Issuer: sessionIssuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
		require.NoError(t, err)

		_, err = s.Parse(token)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("incomplete claims are rejected", func(t *testing.T) {
		s := newTestSessions(now)
		token, err := s.Issue(httptest.NewRecorder(), "user-1", "", "Alice")
		require.NoError(t, err)

		_, err = s.Parse(token)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("Clear expires the cookie", func(t *testing.T) {
		s := newTestSessions(now)
		rec := httptest.NewRecorder()
		s.Clear(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("Require", func(t *testing.T) {
		s := newTestSessions(now)
		token, err := s.Issue(httptest.NewRecorder(), "user-1", "alice", "Alice")
		require.NoError(t, err)

		handler := s.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := SessionFrom(r.Context())
			require.NoError(t, err)
			WriteJSON(w, http.StatusOK, map[string]string{"account": session.AccountID})
		}))

		tc := []struct {
			name   string
			setup  func(r *http.Request)
			status int
		}{
			{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "smas_session", Value: token}) }, status: http.StatusOK},
			{name: "bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, status: http.StatusOK},
			{name: "missing", setup: func(r *http.Request) {}, status: http.StatusUnauthorized},
			{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, status: http.StatusUnauthorized},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				tt.setup(req)
				rec := httptest.NewRecorder()

				handler.ServeHTTP(rec, req)

				assert.Equal(t, tt.status, rec.Code)
				if tt.status == http.StatusOK {
					assert.Contains(t, rec.Body.String(), `"account":"alice"`)
				}
			})
		}
	})

	t.Run("SessionFrom without session", func(t *testing.T) {
		_, err := SessionFrom(context.Background())
		assert.Error(t, err)
	})
}

func TestOAuthHandler(t *testing.T) {
	newHandler := func() (*OAuthHandler, chi.Router) {
		oauth := tu.NewMockOAuth()
		oauth.Codes["good"] = models.Tokens{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour)}

		h := NewOAuthHandler(oauth, "state-1", "/callback")
		r := chi.NewRouter()
		h.Routes(r)
		return h, r
	}

	t.Run("successful callback delivers tokens", func(t *testing.T) {
		h, r := newHandler()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Signed in")

		result := <-h.Result()
		require.NoError(t, result.Error())
		assert.Equal(t, "at", result.Tokens.AccessToken)
		assert.Equal(t, "rt", result.Tokens.RefreshToken)
	})

	t.Run("state mismatch", func(t *testing.T) {
		h, r := newHandler()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=good", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		result := <-h.Result()
		assert.ErrorIs(t, result.Error(), shared.ErrInvalidState)
	})

	t.Run("provider error", func(t *testing.T) {
		h, r := newHandler()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&error=access_denied", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		result := <-h.Result()
		assert.ErrorIs(t, result.Error(), shared.ErrAuthFailed)
		assert.Contains(t, result.Error().Error(), "access_denied")
	})

	t.Run("exchange failure", func(t *testing.T) {
		h, r := newHandler()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=bad", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		result := <-h.Result()
		assert.ErrorIs(t, result.Error(), shared.ErrAuthFailed)
	})

	t.Run("second callback is refused", func(t *testing.T) {
		_, r := newHandler()
		first := httptest.NewRecorder()
		r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good", nil))
		second := httptest.NewRecorder()
		r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good", nil))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusBadRequest, second.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1001").Code)

	limited := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1000").Code, "other clients have their own bucket")
}

func TestRouter(t *testing.T) {
	r := NewRouter(shared.NewLogger(io.Discard))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	t.Run("serves routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("recovers from panics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Slug string `json:"slug"`
	}

	t.Run("valid", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slug":"abc"}`))
		require.NoError(t, DecodeJSON(req, &b))
		assert.Equal(t, "abc", b.Slug)
	})

	t.Run("unknown field", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slug":"abc","extra":1}`))
		assert.ErrorIs(t, DecodeJSON(req, &b), shared.ErrInvalidInput)
	})

	t.Run("malformed", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		err := DecodeJSON(req, &b)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), shared.NewLogger(io.Discard))
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
