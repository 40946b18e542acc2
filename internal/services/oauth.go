package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
	"golang.org/x/oauth2"
)

// defaultTokenLifetime applies when the token endpoint omits expires_in.
const defaultTokenLifetime = time.Hour

// OAuthService is implemented by providers that sign users in with the authorization code flow.
type OAuthService interface {
	// AuthURL returns the provider consent URL carrying state.
	AuthURL(state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*models.Tokens, error)

	// OAuthConfig returns the underlying flow configuration.
	OAuthConfig() *oauth2.Config
}

// Refresher obtains a new access token from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
}

// AuthURL returns the Spotify consent URL. The consent dialog is always shown so users can switch accounts.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for tokens.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*models.Tokens, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}
	tokens := TokensFromOAuth(token, "", time.Now())
	return &tokens, nil
}

// OAuthConfig returns the Spotify authorization code flow configuration.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// Refresher returns a [TokenRefresher] sharing this service's configuration and HTTP client.
func (s *SpotifyService) Refresher() *TokenRefresher {
	return NewTokenRefresher(s.config, s.httpClient)
}

// TokenRefresher performs refresh_token grants. It holds no state between calls.
type TokenRefresher struct {
	config     *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenRefresher creates a [TokenRefresher]. A nil client uses [http.DefaultClient].
func NewTokenRefresher(config *oauth2.Config, client *http.Client) *TokenRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenRefresher{config: config, httpClient: client, now: time.Now}
}

// Refresh exchanges refreshToken for a new access token.
//
// Any failure, including an empty refresh token, is a [*shared.RefreshError].
// The returned refresh token is the provider's new one, or refreshToken if none was issued.
func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	if refreshToken == "" {
		return nil, &shared.RefreshError{Kind: shared.RefreshErrorKind, Err: shared.ErrNoRefreshToken}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	source := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		refreshErr := &shared.RefreshError{Kind: shared.RefreshErrorKind, Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			refreshErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return nil, refreshErr
	}

	tokens := TokensFromOAuth(token, refreshToken, r.now())
	return &tokens, nil
}

// TokensFromOAuth converts an oauth2 token, keeping previousRefresh when the token carries none.
func TokensFromOAuth(token *oauth2.Token, previousRefresh string, now time.Time) models.Tokens {
	tokens := models.Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = previousRefresh
	}
	if tokens.ExpiresAt.IsZero() {
		tokens.ExpiresAt = now.Add(defaultTokenLifetime)
	}
	return tokens
}
