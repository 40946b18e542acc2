package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/locks"
	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/charmbracelet/log"
)

const (
	defaultTopTracksLimit = 5
	defaultTimeRange      = "short_term"
)

// Contributor is the signed-in user adding tracks. AccessToken is their own Spotify token.
type Contributor struct {
	ID          string
	Name        string
	AccessToken string
}

// ContributionRequest selects the target playlist by link slug or registry id.
//
// When TrackURIs is set only top tracks with those URIs are contributed.
type ContributionRequest struct {
	PlaylistID  string
	LinkSlug    string
	TrackURIs   []string
	Contributor Contributor
}

// ContributionResult is a recorded contribution.
type ContributionResult struct {
	Contribution *models.Contribution
	Tracks       []models.ContributedTrack
	Playlist     *models.Playlist
	Link         *models.SharingLink
	SnapshotID   string
}

// WorkflowOpts configures a [ContributionWorkflow].
type WorkflowOpts struct {
	TopTracksLimit int
	TimeRange      string
	Logger         *log.Logger
}

// ContributionWorkflow adds a contributor's top tracks to an owner's playlist.
//
// The steps run in order: validate link, check cooldown, fetch the contributor's tracks,
// ensure a fresh owner credential, add tracks with the owner's token, then record the
// contribution. Each (playlist, contributor) pair is locked for the whole run.
type ContributionWorkflow struct {
	provider      services.Provider
	credentials   *CredentialManager
	playlists     *repositories.PlaylistRepository
	links         *repositories.LinkRepository
	contributions *repositories.ContributionRepository
	locker        locks.Locker
	limit         int
	timeRange     string
	logger        *log.Logger
	now           func() time.Time
}

// NewContributionWorkflow creates a [ContributionWorkflow].
func NewContributionWorkflow(
	provider services.Provider,
	credentials *CredentialManager,
	playlists *repositories.PlaylistRepository,
	links *repositories.LinkRepository,
	contributions *repositories.ContributionRepository,
	locker locks.Locker,
	opts WorkflowOpts,
) *ContributionWorkflow {
	if opts.TopTracksLimit <= 0 {
		opts.TopTracksLimit = defaultTopTracksLimit
	}
	if opts.TimeRange == "" {
		opts.TimeRange = defaultTimeRange
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &ContributionWorkflow{
		provider:      provider,
		credentials:   credentials,
		playlists:     playlists,
		links:         links,
		contributions: contributions,
		locker:        locker,
		limit:         opts.TopTracksLimit,
		timeRange:     opts.TimeRange,
		logger:        opts.Logger.With("component", "contribute"),
		now:           time.Now,
	}
}

// Contribute runs the workflow. Progress updates are sent without blocking when progress is non-nil.
//
// Failures are one of [shared.ErrLinkInvalid], [*shared.CooldownError], [shared.ErrNoTracksAvailable],
// [shared.ErrOwnerCredentialExpired], [shared.ErrExternalMutation] or [shared.ErrRecordingFailed].
// Once tracks are being added the run ignores cancellation of ctx.
func (w *ContributionWorkflow) Contribute(ctx context.Context, progress chan<- ProgressUpdate, req ContributionRequest) (*ContributionResult, error) {
	contributor := req.Contributor
	if contributor.ID == "" || contributor.AccessToken == "" {
		return nil, fmt.Errorf("%w: contributor session required", shared.ErrNotAuthenticated)
	}

	sendProgress(progress, validatingLinkUpdate(orValue(req.LinkSlug, req.PlaylistID)))
	playlist, link, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	logger := w.logger.With("playlist", playlist.ID(), "contributor", contributor.ID)

	unlock, err := w.locker.Lock(ctx, "contribute:"+playlist.ID()+":"+contributor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock contribution: %w", err)
	}
	defer unlock()

	sendProgress(progress, checkingCooldownUpdate(playlist))
	now := w.now()
	latest, active, err := w.contributions.HasActiveContribution(ctx, playlist.ID(), contributor.ID, now)
	if err != nil {
		return nil, err
	}
	if active {
		logger.Info("contribution blocked by cooldown", "expires_at", latest.ExpiresAt)
		return nil, &shared.CooldownError{ExpiresAt: latest.ExpiresAt, DaysRemaining: latest.DaysRemaining(now)}
	}

	sendProgress(progress, fetchingTracksUpdate(w.limit, w.timeRange))
	top, err := w.provider.TopTracks(ctx, contributor.AccessToken, w.limit, w.timeRange)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top tracks: %w", err)
	}
	tracks := selectTracks(top, req.TrackURIs)
	if len(tracks) == 0 {
		return nil, shared.ErrNoTracksAvailable
	}

	sendProgress(progress, refreshingOwnerUpdate(link.OwnerName))
	owner, err := w.credentials.Fresh(ctx, playlist.OwnerAccountID)
	if err != nil {
		logger.Warn("owner credential unavailable", "owner", playlist.OwnerAccountID, "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrOwnerCredentialExpired, err)
	}

	ctx = context.WithoutCancel(ctx)
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}

	sendProgress(progress, mutatingPlaylistUpdate(tracks))
	snapshot, err := w.provider.AddTracks(ctx, owner.AccessToken, playlist.SpotifyID, uris)
	if err != nil {
		logger.Error("failed to add tracks", "spotify_id", playlist.SpotifyID, "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrExternalMutation, err)
	}

	sendProgress(progress, recordingUpdate())
	contribution := models.NewContribution(playlist.ID(), contributor.ID, contributor.Name, tracks, w.now())
	if err := w.contributions.Create(ctx, contribution); err != nil {
		logger.Error("tracks added but contribution not recorded",
			"reconcile", true,
			"spotify_id", playlist.SpotifyID,
			"snapshot", snapshot,
			"uris", uris,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", shared.ErrRecordingFailed, err)
	}

	if err := w.playlists.AddTrackCount(ctx, playlist.ID(), len(tracks)); err != nil {
		logger.Warn("failed to update track count", "error", err)
	} else {
		playlist.TrackCount += len(tracks)
	}
	if err := w.links.IncrementUsage(ctx, link.ID()); err != nil {
		logger.Warn("failed to increment link usage", "link", link.Slug, "error", err)
	} else {
		link.UsageCount++
	}

	result := &ContributionResult{
		Contribution: contribution,
		Tracks:       tracks,
		Playlist:     playlist,
		Link:         link,
		SnapshotID:   snapshot,
	}
	logger.Info("contribution recorded", "tracks", len(tracks), "expires_at", contribution.ExpiresAt)
	sendProgress(progress, successUpdate(result))
	return result, nil
}

// resolve finds the active playlist and link a request points at.
func (w *ContributionWorkflow) resolve(ctx context.Context, req ContributionRequest) (*models.Playlist, *models.SharingLink, error) {
	var (
		link *models.SharingLink
		err  error
	)

	switch {
	case req.LinkSlug != "":
		link, err = w.links.GetBySlug(ctx, req.LinkSlug)
		if req.PlaylistID != "" && err == nil && link.PlaylistID != req.PlaylistID {
			return nil, nil, fmt.Errorf("%w: link %s does not belong to playlist %s", shared.ErrLinkInvalid, req.LinkSlug, req.PlaylistID)
		}
	case req.PlaylistID != "":
		link, err = w.links.ActiveForPlaylist(ctx, req.PlaylistID)
	default:
		return nil, nil, fmt.Errorf("%w: playlist or link is required", shared.ErrMissingArgument)
	}
	if errors.Is(err, shared.ErrLinkNotFound) {
		return nil, nil, fmt.Errorf("%w: no active link", shared.ErrLinkInvalid)
	}
	if err != nil {
		return nil, nil, err
	}

	playlist, err := w.playlists.Get(ctx, link.PlaylistID)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil, nil, fmt.Errorf("%w: playlist missing", shared.ErrLinkInvalid)
	}
	if err != nil {
		return nil, nil, err
	}
	if !playlist.Active {
		return nil, nil, fmt.Errorf("%w: playlist inactive", shared.ErrLinkInvalid)
	}
	return playlist, link, nil
}

// selectTracks keeps top tracks, restricted to wanted when it is non-empty. Duplicate URIs are dropped.
func selectTracks(top []services.Track, wanted []string) []models.ContributedTrack {
	allow := make(map[string]bool, len(wanted))
	for _, uri := range wanted {
		allow[uri] = true
	}

	seen := make(map[string]bool, len(top))
	tracks := make([]models.ContributedTrack, 0, len(top))
	for _, t := range top {
		if t.URI == "" || seen[t.URI] {
			continue
		}
		if len(allow) > 0 && !allow[t.URI] {
			continue
		}
		seen[t.URI] = true
		tracks = append(tracks, models.ContributedTrack{URI: t.URI, Name: t.Name, Artist: t.Artist, Album: t.Album})
	}
	return tracks
}

func orValue(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
