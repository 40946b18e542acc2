package models

import (
	"fmt"
	"time"
)

// CooldownPeriod is how long a contributor waits before contributing to the same playlist again.
//
// It is a fixed duration, not a calendar offset.
const CooldownPeriod = 4 * 7 * 24 * time.Hour

// ContributedTrack is one track added by a [Contribution].
type ContributedTrack struct {
	URI    string
	Name   string
	Artist string
	Album  string
}

// Contribution is a contributor's batch of tracks added to a [Playlist].
type Contribution struct {
	Entity
	PlaylistID      string
	ContributorID   string
	ContributorName string
	Tracks          []ContributedTrack
	ExpiresAt       time.Time
}

// NewContribution creates an unsaved [Contribution] created at now and expiring one
// [CooldownPeriod] later.
func NewContribution(playlistID, contributorID, contributorName string, tracks []ContributedTrack, now time.Time) *Contribution {
	e := newEntity(now)
	return &Contribution{
		Entity:          e,
		PlaylistID:      playlistID,
		ContributorID:   contributorID,
		ContributorName: contributorName,
		Tracks:          tracks,
		ExpiresAt:       e.CreatedAt().Add(CooldownPeriod),
	}
}

// IsActive reports whether the cooldown still applies at now.
func (c *Contribution) IsActive(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// DaysRemaining returns the whole days until the cooldown ends, rounded up.
func (c *Contribution) DaysRemaining(now time.Time) int {
	return DaysUntil(c.ExpiresAt, now)
}

// TrackURIs returns the URIs of the contributed tracks in order.
func (c *Contribution) TrackURIs() []string {
	uris := make([]string, len(c.Tracks))
	for i, t := range c.Tracks {
		uris[i] = t.URI
	}
	return uris
}

func (c *Contribution) Validate() error {
	switch {
	case c.PlaylistID == "":
		return fmt.Errorf("playlist id is required")
	case c.ContributorID == "":
		return fmt.Errorf("contributor id is required")
	case len(c.Tracks) == 0:
		return fmt.Errorf("at least one track is required")
	case !c.ExpiresAt.After(c.CreatedAt()):
		return fmt.Errorf("expiry must be after creation")
	}
	for i, t := range c.Tracks {
		if t.URI == "" {
			return fmt.Errorf("track %d has no uri", i)
		}
	}
	return nil
}

// DaysUntil returns ceil((t - now) / 24h), or 0 when t is not after now.
func DaysUntil(t, now time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	day := 24 * time.Hour
	return int((d + day - 1) / day)
}
