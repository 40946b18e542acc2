package tasks

import (
	"fmt"

	"github.com/HienH/smas-vibing/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or web layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase is a state of the contribution workflow or of dashboard provisioning.
type Phase int

const (
	ValidatingLink Phase = iota
	CheckingCooldown
	FetchingContributorTracks
	RefreshingOwnerCredential
	MutatingExternalPlaylist
	RecordingContribution
	Success
	ProvisioningPlaylist
	ProvisioningLink
)

func (p Phase) String() string {
	switch p {
	case ValidatingLink:
		return "validating_link"
	case CheckingCooldown:
		return "checking_cooldown"
	case FetchingContributorTracks:
		return "fetching_contributor_tracks"
	case RefreshingOwnerCredential:
		return "refreshing_owner_credential"
	case MutatingExternalPlaylist:
		return "mutating_external_playlist"
	case RecordingContribution:
		return "recording_contribution"
	case Success:
		return "success"
	case ProvisioningPlaylist:
		return "provisioning_playlist"
	case ProvisioningLink:
		return "provisioning_link"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validatingLinkUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{Phase: ValidatingLink, Step: 1, Total: 6, Message: fmt.Sprintf("Validating link %s...", ref)}
}

func checkingCooldownUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckingCooldown,
		Step:    2,
		Total:   6,
		Message: fmt.Sprintf("Checking cooldown for %s...", playlist.Name),
		Data:    playlist,
	}
}

func fetchingTracksUpdate(limit int, timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchingContributorTracks,
		Step:    3,
		Total:   6,
		Message: fmt.Sprintf("Fetching your top %d tracks (%s)...", limit, timeRange),
	}
}

func refreshingOwnerUpdate(owner string) ProgressUpdate {
	return ProgressUpdate{Phase: RefreshingOwnerCredential, Step: 4, Total: 6, Message: fmt.Sprintf("Checking credentials for %s...", owner)}
}

func mutatingPlaylistUpdate(tracks []models.ContributedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MutatingExternalPlaylist,
		Step:    5,
		Total:   6,
		Message: fmt.Sprintf("Adding %d track(s) to the playlist...", len(tracks)),
		Data:    tracks,
	}
}

func recordingUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: RecordingContribution, Step: 6, Total: 6, Message: "Recording contribution..."}
}

func successUpdate(result *ContributionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Success,
		Step:    6,
		Total:   6,
		Message: fmt.Sprintf("✓ Added %d track(s) to %s", len(result.Tracks), result.Playlist.Name),
		Data:    result,
	}
}

func provisioningPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{Phase: ProvisioningPlaylist, Step: 1, Total: 2, Message: fmt.Sprintf("Creating playlist %s...", name)}
}

func provisioningLinkUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{Phase: ProvisioningLink, Step: 2, Total: 2, Message: fmt.Sprintf("Creating sharing link for %s...", playlist.Name)}
}
