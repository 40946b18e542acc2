package models

import (
	"fmt"
	"time"
)

// SharingLink is a public slug pointing contributors at a [Playlist].
//
// An inactive link behaves exactly like a slug that was never issued.
type SharingLink struct {
	Entity
	Slug           string
	PlaylistID     string
	OwnerAccountID string
	OwnerName      string
	Active         bool
	UsageCount     int
	LastUsedAt     *time.Time
}

// NewSharingLink creates an unsaved, active [SharingLink].
func NewSharingLink(slug, playlistID, ownerAccountID, ownerName string, now time.Time) *SharingLink {
	return &SharingLink{
		Entity:         newEntity(now),
		Slug:           slug,
		PlaylistID:     playlistID,
		OwnerAccountID: ownerAccountID,
		OwnerName:      ownerName,
		Active:         true,
	}
}

func (l *SharingLink) Validate() error {
	switch {
	case l.Slug == "":
		return fmt.Errorf("slug is required")
	case l.PlaylistID == "":
		return fmt.Errorf("playlist id is required")
	case l.OwnerAccountID == "":
		return fmt.Errorf("owner is required")
	case l.UsageCount < 0:
		return fmt.Errorf("usage count cannot be negative")
	}
	return nil
}
