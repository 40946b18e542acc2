package models

import (
	"fmt"
	"time"
)

// Playlist is the registry entry for an external collaborative playlist.
//
// SpotifyID never changes after creation. At most one active row exists per SpotifyID.
type Playlist struct {
	Entity
	SpotifyID      string
	OwnerAccountID string
	Name           string
	Description    string
	TrackCount     int
	Active         bool
}

// NewPlaylist creates an unsaved, active [Playlist] with no tracks.
func NewPlaylist(spotifyID, ownerAccountID, name, description string, now time.Time) *Playlist {
	return &Playlist{
		Entity:         newEntity(now),
		SpotifyID:      spotifyID,
		OwnerAccountID: ownerAccountID,
		Name:           name,
		Description:    description,
		Active:         true,
	}
}

// OwnedBy reports whether accountID owns the playlist.
func (p *Playlist) OwnedBy(accountID string) bool {
	return accountID != "" && p.OwnerAccountID == accountID
}

func (p *Playlist) Validate() error {
	switch {
	case p.SpotifyID == "":
		return fmt.Errorf("spotify id is required")
	case p.OwnerAccountID == "":
		return fmt.Errorf("owner is required")
	case p.Name == "":
		return fmt.Errorf("name is required")
	case p.TrackCount < 0:
		return fmt.Errorf("track count cannot be negative")
	}
	return nil
}
