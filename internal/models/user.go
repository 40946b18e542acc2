package models

import (
	"fmt"
	"strings"
	"time"
)

// ProviderSpotify identifies Spotify accounts in [AccountLink.Provider].
const ProviderSpotify = "spotify"

// User is an internal account.
type User struct {
	Entity
	DisplayName string
	Email       string
	deletedAt   *time.Time
}

// NewUser creates an unsaved [User].
func NewUser(displayName, email string, now time.Time) *User {
	return &User{Entity: newEntity(now), DisplayName: displayName, Email: email}
}

func (u *User) DeletedAt() *time.Time { return u.deletedAt }
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// Name returns the display name, falling back to the email's local part.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

func (u *User) Validate() error {
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	if len(u.DisplayName) > 255 {
		return fmt.Errorf("display name too long")
	}
	return nil
}

// AccountLink maps one [User] to one external provider account.
//
// AccountID is the provider's account identifier and keys [Credential].
// ProfileID is the identifier the provider uses in its public API (the Spotify user id).
type AccountLink struct {
	Entity
	UserID    string
	Provider  string
	AccountID string
	ProfileID string
}

// NewAccountLink creates an unsaved [AccountLink].
func NewAccountLink(userID, provider, accountID, profileID string, now time.Time) *AccountLink {
	return &AccountLink{
		Entity:    newEntity(now),
		UserID:    userID,
		Provider:  provider,
		AccountID: accountID,
		ProfileID: profileID,
	}
}

func (a *AccountLink) Validate() error {
	switch {
	case a.UserID == "":
		return fmt.Errorf("user id is required")
	case a.Provider == "":
		return fmt.Errorf("provider is required")
	case a.AccountID == "":
		return fmt.Errorf("account id is required")
	case a.ProfileID == "":
		return fmt.Errorf("profile id is required")
	}
	return nil
}
