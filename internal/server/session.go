package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "smas"

// Session identifies a signed-in user.
type Session struct {
	UserID    string `json:"uid"`
	AccountID string `json:"aid"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

type sessionKey struct{}

// Sessions issues and verifies HS256-signed session cookies.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewSessions creates a [Sessions] from configuration. Cookies are marked Secure when baseURL is https.
func NewSessions(cfg shared.SessionConfig, baseURL string) *Sessions {
	return &Sessions{
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL(),
		cookieName: cfg.CookieName,
		secure:     strings.HasPrefix(baseURL, "https://"),
		now:        time.Now,
	}
}

// Issue signs a session for the user and sets it as a cookie. The signed token is also returned.
func (s *Sessions) Issue(w http.ResponseWriter, userID, accountID, name string) (string, error) {
	now := s.now()
	claims := &Session{
		UserID:    userID,
		AccountID: accountID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse verifies a signed session token.
func (s *Sessions) Parse(raw string) (*Session, error) {
	claims := &Session{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session", shared.ErrNotAuthenticated)
	}
	if claims.UserID == "" || claims.AccountID == "" {
		return nil, fmt.Errorf("%w: incomplete session", shared.ErrNotAuthenticated)
	}
	return claims, nil
}

// FromRequest reads the session from the cookie, or from a Bearer Authorization header.
func (s *Sessions) FromRequest(r *http.Request) (*Session, error) {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		return s.Parse(c.Value)
	}

	scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") && raw != "" {
		return s.Parse(raw)
	}
	return nil, fmt.Errorf("%w: no session", shared.ErrNotAuthenticated)
}

// Require rejects requests without a valid session with 401 and stores the session in the request context.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.FromRequest(r)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the session stored by [Sessions.Require].
func SessionFrom(ctx context.Context) (*Session, error) {
	session, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || session == nil {
		return nil, errors.New("no session in context")
	}
	return session, nil
}
