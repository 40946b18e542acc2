package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HienH/smas-vibing/internal/locks"
	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/charmbracelet/log"
)

const (
	playlistDescription = "Friends add their top tracks here through smas."
	recentContributions = 10
)

// Dashboard is an owner's collaborative playlist with its sharing link.
type Dashboard struct {
	User          *models.User
	Playlist      *models.Playlist
	Link          *models.SharingLink
	ShareURL      string
	Contributions []*models.Contribution
}

// ProvisionerOpts configures a [Provisioner].
type ProvisionerOpts struct {
	BaseURL string
	Cover   []byte // optional JPEG uploaded to newly created playlists
	Logger  *log.Logger
}

// Provisioner gets or creates an owner's playlist and sharing link.
//
// Calls for one owner are serialized, so repeated dashboard loads never create a second
// external playlist.
type Provisioner struct {
	provider      services.Provider
	accounts      *AccountService
	credentials   *CredentialManager
	playlists     *repositories.PlaylistRepository
	links         *repositories.LinkRepository
	contributions *repositories.ContributionRepository
	locker        locks.Locker
	baseURL       string
	cover         []byte
	logger        *log.Logger
}

// NewProvisioner creates a [Provisioner].
func NewProvisioner(
	provider services.Provider,
	accounts *AccountService,
	credentials *CredentialManager,
	playlists *repositories.PlaylistRepository,
	links *repositories.LinkRepository,
	contributions *repositories.ContributionRepository,
	locker locks.Locker,
	opts ProvisionerOpts,
) *Provisioner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Provisioner{
		provider:      provider,
		accounts:      accounts,
		credentials:   credentials,
		playlists:     playlists,
		links:         links,
		contributions: contributions,
		locker:        locker,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		cover:         opts.Cover,
		logger:        opts.Logger.With("component", "provisioner"),
	}
}

// PlaylistName returns the name given to an owner's collaborative playlist.
func PlaylistName(owner string) string {
	return fmt.Sprintf("%s's SMAS playlist", owner)
}

// ShareURL returns the public URL for slug.
func ShareURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/s/" + slug
}

// Dashboard returns the owner's active playlist and sharing link, creating whichever is missing.
func (p *Provisioner) Dashboard(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*Dashboard, error) {
	user, account, err := p.accounts.Account(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlock, err := p.locker.Lock(ctx, "provision:"+account.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	cred, err := p.credentials.Fresh(ctx, account.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrOwnerCredentialExpired, err)
	}

	playlist, err := p.playlists.ActiveForOwner(ctx, account.AccountID)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		sendProgress(progress, provisioningPlaylistUpdate(PlaylistName(user.Name())))
		playlist, err = p.createPlaylist(ctx, user, account, cred.AccessToken)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		p.reconcile(ctx, playlist, cred.AccessToken)
	}

	link, err := p.links.ActiveForPlaylist(ctx, playlist.ID())
	if errors.Is(err, shared.ErrLinkNotFound) {
		sendProgress(progress, provisioningLinkUpdate(playlist))
		link, err = p.links.CreateUniqueLink(ctx, repositories.LinkInput{
			PlaylistID:     playlist.ID(),
			OwnerAccountID: account.AccountID,
			OwnerName:      user.Name(),
		})
	}
	if err != nil {
		return nil, err
	}

	recent, err := p.contributions.ListByPlaylist(ctx, playlist.ID())
	if err != nil {
		return nil, err
	}
	if len(recent) > recentContributions {
		recent = recent[:recentContributions]
	}

	return &Dashboard{
		User:          user,
		Playlist:      playlist,
		Link:          link,
		ShareURL:      ShareURL(p.baseURL, link.Slug),
		Contributions: recent,
	}, nil
}

func (p *Provisioner) createPlaylist(ctx context.Context, user *models.User, account *models.AccountLink, token string) (*models.Playlist, error) {
	remote, err := p.provider.CreatePlaylist(ctx, token, account.ProfileID, services.PlaylistSpec{
		Name:        PlaylistName(user.Name()),
		Description: playlistDescription,
		Public:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playlist: %w", shared.ErrExternalMutation, err)
	}

	if len(p.cover) > 0 {
		if err := p.provider.UploadCover(ctx, token, remote.ID, p.cover); err != nil {
			p.logger.Warn("failed to upload cover image", "playlist", remote.ID, "error", err)
		}
	}

	playlist, created, err := p.playlists.GetOrCreate(ctx, repositories.PlaylistInput{
		SpotifyID:      remote.ID,
		OwnerAccountID: account.AccountID,
		Name:           remote.Name,
		Description:    remote.Description,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("provisioned playlist", "playlist", playlist.ID(), "spotify_id", remote.ID, "created", created)
	return playlist, nil
}

// reconcile copies name and description drift from the external playlist into the registry.
func (p *Provisioner) reconcile(ctx context.Context, playlist *models.Playlist, token string) {
	remote, err := p.provider.GetPlaylist(ctx, token, playlist.SpotifyID)
	if err != nil {
		p.logger.Warn("failed to fetch playlist for reconciliation", "playlist", playlist.ID(), "error", err)
		return
	}
	if remote.Name == playlist.Name && remote.Description == playlist.Description {
		return
	}
	if remote.Name != "" {
		playlist.Name = remote.Name
	}
	playlist.Description = remote.Description

	if err := p.playlists.Update(ctx, playlist); err != nil {
		p.logger.Warn("failed to reconcile playlist", "playlist", playlist.ID(), "error", err)
	}
}
