package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
	"github.com/charmbracelet/lipgloss"
)

var labelStyle = NewBold("#626262").Width(14)

// KeyValues renders aligned "label value" lines.
func KeyValues(pairs ...[2]string) string {
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(p[0]), p[1])
	}
	return strings.Join(lines, "\n")
}

// RenderProgress describes a workflow update in one line, prefixed with its step when known.
func RenderProgress(update tasks.ProgressUpdate) string {
	if update.Phase == tasks.Success {
		return Success(update.Message)
	}

	msg := update.Message
	if msg == "" {
		msg = phaseLabel(update.Phase)
	}
	if update.Total > 0 {
		return fmt.Sprintf("%s %s", Help(fmt.Sprintf("[%d/%d]", update.Step, update.Total)), msg)
	}
	return msg
}

func phaseLabel(p tasks.Phase) string {
	switch p {
	case tasks.ValidatingLink:
		return "Checking sharing link..."
	case tasks.CheckingCooldown:
		return "Checking cooldown..."
	case tasks.FetchingContributorTracks:
		return "Fetching your top tracks..."
	case tasks.RefreshingOwnerCredential:
		return "Preparing the owner's playlist..."
	case tasks.MutatingExternalPlaylist:
		return "Adding tracks..."
	case tasks.RecordingContribution:
		return "Recording contribution..."
	case tasks.ProvisioningPlaylist:
		return "Creating playlist on Spotify..."
	case tasks.ProvisioningLink:
		return "Creating sharing link..."
	default:
		return "Processing..."
	}
}

// PrintProgress writes every update from updates to w until the channel is closed.
// The returned channel is closed once updates is drained.
func PrintProgress(w io.Writer, updates <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			fmt.Fprintln(w, RenderProgress(update))
		}
	}()
	return done
}

// RenderDashboard shows an owner's playlist, share link and recent contributions.
func RenderDashboard(d *tasks.Dashboard) string {
	var b strings.Builder
	b.WriteString(Title(d.Playlist.Name))
	b.WriteString("\n")
	b.WriteString(KeyValues(
		[2]string{"Share link", d.ShareURL},
		[2]string{"Tracks", fmt.Sprintf("%d", d.Playlist.TrackCount)},
		[2]string{"Link uses", fmt.Sprintf("%d", d.Link.UsageCount)},
	))
	b.WriteString("\n")

	if len(d.Contributions) == 0 {
		b.WriteString("\n" + Help("No contributions yet. Share the link with friends."))
		return b.String()
	}

	b.WriteString("\nRecent contributions:\n")
	for _, c := range d.Contributions {
		b.WriteString(fmt.Sprintf("  • %s added %d track(s) on %s\n", contributor(c), len(c.Tracks), c.CreatedAt().Format("2006-01-02")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderContribution summarizes a recorded contribution.
func RenderContribution(result *tasks.ContributionResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(Success(fmt.Sprintf("✓ Added %d track(s) to %s", len(result.Tracks), result.Playlist.Name)))
	b.WriteString("\n")
	for _, t := range result.Tracks {
		b.WriteString(fmt.Sprintf("  • %s - %s\n", t.Artist, t.Name))
	}
	b.WriteString(Help(fmt.Sprintf("You can contribute again in %d day(s).", result.Contribution.DaysRemaining(now))))
	return b.String()
}

// RenderCooldown explains when a contributor may contribute again.
func RenderCooldown(err *shared.CooldownError) string {
	return Warning(fmt.Sprintf("You already contributed to this playlist. Try again in %d day(s), after %s.",
		err.DaysRemaining, err.ExpiresAt.Local().Format("Mon Jan 2 15:04")))
}

func contributor(c *models.Contribution) string {
	if c.ContributorName != "" {
		return c.ContributorName
	}
	return c.ContributorID
}
