// package services defines interface Provider for interacting with the music service HTTP API
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HienH/smas-vibing/internal/shared"
)

// Provider is the external music service boundary.
type Provider interface {
	// CurrentUser returns the profile that owns accessToken.
	CurrentUser(ctx context.Context, accessToken string) (*Profile, error)

	// TopTracks returns up to limit of the user's top tracks for timeRange (short_term, medium_term, long_term).
	TopTracks(ctx context.Context, accessToken string, limit int, timeRange string) ([]Track, error)

	// CreatePlaylist creates a playlist owned by userID.
	CreatePlaylist(ctx context.Context, accessToken, userID string, spec PlaylistSpec) (*Playlist, error)

	// AddTracks appends uris to the playlist and returns the new snapshot id.
	AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) (string, error)

	// UploadCover replaces the playlist's cover with a JPEG image.
	UploadCover(ctx context.Context, accessToken, playlistID string, jpeg []byte) error

	// GetPlaylist retrieves playlist metadata.
	GetPlaylist(ctx context.Context, accessToken, playlistID string) (*Playlist, error)
}

// Profile is an external account's public profile.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Track is a track from the provider.
type Track struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"durationMs"`
}

// Playlist is playlist metadata from the provider.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	OwnerID       string `json:"ownerId"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	TrackCount    int    `json:"trackCount"`
	URL           string `json:"url"`
}

// PlaylistSpec describes a playlist to create.
type PlaylistSpec struct {
	Name          string
	Description   string
	Public        bool
	Collaborative bool
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
}

// Is matches [shared.ErrAPIRequest], and [shared.ErrRateLimited] for 429 responses.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// StatusCode extracts the HTTP status from an [*APIError], or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
