package models

import (
	"fmt"
	"time"
)

// RefreshMargin is how close to expiry an access token may get before it is refreshed.
const RefreshMargin = 60 * time.Second

// Tokens is the result of an authorization or refresh grant.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Credential holds the OAuth tokens for one external account.
type Credential struct {
	Entity
	UserID       string
	AccountID    string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewCredential creates an unsaved [Credential] from t.
func NewCredential(userID, accountID string, t Tokens, now time.Time) *Credential {
	return &Credential{
		Entity:       newEntity(now),
		UserID:       userID,
		AccountID:    accountID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    Millis(t.ExpiresAt),
	}
}

// NeedsRefresh reports whether the access token expires within [RefreshMargin] of now.
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Sub(now) <= RefreshMargin
}

// Tokens returns the credential's current token set.
func (c *Credential) Tokens() Tokens {
	return Tokens{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken, ExpiresAt: c.ExpiresAt}
}

func (c *Credential) Validate() error {
	switch {
	case c.UserID == "":
		return fmt.Errorf("user id is required")
	case c.AccountID == "":
		return fmt.Errorf("account id is required")
	case c.AccessToken == "":
		return fmt.Errorf("access token is required")
	case c.ExpiresAt.IsZero():
		return fmt.Errorf("expiry is required")
	}
	return nil
}
