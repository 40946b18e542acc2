package web

import (
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/tasks"
)

type playlistView struct {
	ID             string `json:"id"`
	SpotifyID      string `json:"spotifyId"`
	OwnerAccountID string `json:"ownerAccountId"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	TrackCount     int    `json:"trackCount"`
	Active         bool   `json:"active"`
}

type linkView struct {
	Slug       string     `json:"slug"`
	URL        string     `json:"url"`
	PlaylistID string     `json:"playlistId"`
	OwnerName  string     `json:"ownerName"`
	Active     bool       `json:"active"`
	UsageCount int        `json:"usageCount"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// publicLinkView is what anyone holding a slug may see.
type publicLinkView struct {
	Slug         string `json:"slug"`
	OwnerName    string `json:"ownerName"`
	PlaylistName string `json:"playlistName"`
	UsageCount   int    `json:"usageCount"`
}

type trackView struct {
	URI    string `json:"uri"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

type contributionView struct {
	ID              string      `json:"id"`
	PlaylistID      string      `json:"playlistId"`
	ContributorID   string      `json:"contributorId"`
	ContributorName string      `json:"contributorName"`
	Tracks          []trackView `json:"tracks"`
	CreatedAt       time.Time   `json:"createdAt"`
	ExpiresAt       time.Time   `json:"expiresAt"`
}

type dashboardView struct {
	User          userView           `json:"user"`
	Playlist      playlistView       `json:"playlist"`
	Link          linkView           `json:"link"`
	ShareURL      string             `json:"shareUrl"`
	Contributions []contributionView `json:"contributions"`
}

type userView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type contributeView struct {
	Contribution contributionView `json:"contribution"`
	Playlist     playlistView     `json:"playlist"`
	SnapshotID   string           `json:"snapshotId,omitempty"`
}

func toPlaylistView(p *models.Playlist) playlistView {
	return playlistView{
		ID:             p.ID(),
		SpotifyID:      p.SpotifyID,
		OwnerAccountID: p.OwnerAccountID,
		Name:           p.Name,
		Description:    p.Description,
		TrackCount:     p.TrackCount,
		Active:         p.Active,
	}
}

func toLinkView(l *models.SharingLink, baseURL string) linkView {
	return linkView{
		Slug:       l.Slug,
		URL:        tasks.ShareURL(baseURL, l.Slug),
		PlaylistID: l.PlaylistID,
		OwnerName:  l.OwnerName,
		Active:     l.Active,
		UsageCount: l.UsageCount,
		LastUsedAt: l.LastUsedAt,
		CreatedAt:  l.CreatedAt(),
	}
}

func toContributionView(c *models.Contribution) contributionView {
	tracks := make([]trackView, len(c.Tracks))
	for i, t := range c.Tracks {
		tracks[i] = trackView{URI: t.URI, Name: t.Name, Artist: t.Artist, Album: t.Album}
	}
	return contributionView{
		ID:              c.ID(),
		PlaylistID:      c.PlaylistID,
		ContributorID:   c.ContributorID,
		ContributorName: c.ContributorName,
		Tracks:          tracks,
		CreatedAt:       c.CreatedAt(),
		ExpiresAt:       c.ExpiresAt,
	}
}

func toContributionViews(cs []*models.Contribution) []contributionView {
	views := make([]contributionView, len(cs))
	for i, c := range cs {
		views[i] = toContributionView(c)
	}
	return views
}

func toTrackViews(tracks []services.Track) []trackView {
	views := make([]trackView, len(tracks))
	for i, t := range tracks {
		views[i] = trackView{URI: t.URI, Name: t.Name, Artist: t.Artist, Album: t.Album}
	}
	return views
}
