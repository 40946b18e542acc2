package shared

import (
	"fmt"
	"time"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")

	// Persistence errors
	ErrUserNotFound         = fmt.Errorf("user not found")
	ErrAccountLinkNotFound  = fmt.Errorf("account link not found")
	ErrCredentialNotFound   = fmt.Errorf("credential not found")
	ErrPlaylistNotFound     = fmt.Errorf("playlist not found")
	ErrLinkNotFound         = fmt.Errorf("sharing link not found")
	ErrContributionNotFound = fmt.Errorf("contribution not found")
	ErrAlreadyExists        = fmt.Errorf("already exists")

	// Sharing errors
	ErrSlugGenerationExhausted = fmt.Errorf("could not generate a unique slug")

	// Contribution outcomes
	ErrLinkInvalid            = fmt.Errorf("sharing link is invalid or inactive")
	ErrNoTracksAvailable      = fmt.Errorf("no tracks available to contribute")
	ErrOwnerCredentialExpired = fmt.Errorf("playlist owner credential unavailable")
	ErrExternalMutation       = fmt.Errorf("failed to add tracks to playlist")
	ErrRecordingFailed        = fmt.Errorf("failed to record contribution")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// CooldownError reports that a contributor already has an unexpired contribution to a playlist.
type CooldownError struct {
	ExpiresAt     time.Time
	DaysRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("contribution cooldown active for %d more day(s), until %s", e.DaysRemaining, e.ExpiresAt.UTC().Format(time.RFC3339))
}

// RefreshError reports a failed refresh grant. Kind is always [RefreshErrorKind].
type RefreshError struct {
	Kind       string
	StatusCode int
	Err        error
}

// RefreshErrorKind tags every [RefreshError].
const RefreshErrorKind = "RefreshAccessTokenError"

func (e *RefreshError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRefreshFailed) match any refresh failure.
func (e *RefreshError) Is(target error) bool { return target == ErrRefreshFailed }
