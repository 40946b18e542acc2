package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
)

func TestRenderProgress(t *testing.T) {
	tc := []struct {
		name   string
		update tasks.ProgressUpdate
		want   string
	}{
		{name: "message with step", update: tasks.ProgressUpdate{Phase: tasks.CheckingCooldown, Step: 2, Total: 6, Message: "Checking cooldown for Mix"}, want: "Checking cooldown for Mix"},
		{name: "falls back to phase label", update: tasks.ProgressUpdate{Phase: tasks.ProvisioningLink}, want: "Creating sharing link..."},
		{name: "unknown phase", update: tasks.ProgressUpdate{Phase: tasks.Phase(42)}, want: "Processing..."},
		{name: "success", update: tasks.ProgressUpdate{Phase: tasks.Success, Message: "✓ Added 5 track(s) to Mix"}, want: "✓ Added 5 track(s) to Mix"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderProgress(tt.update); !strings.Contains(got, tt.want) {
				t.Errorf("RenderProgress() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	updates := make(chan tasks.ProgressUpdate, 2)
	updates <- tasks.ProgressUpdate{Phase: tasks.ValidatingLink, Step: 1, Total: 6, Message: "Checking link abc12345"}
	updates <- tasks.ProgressUpdate{Phase: tasks.Success, Message: "✓ done"}
	close(updates)

	<-PrintProgress(&buf, updates)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Checking link abc12345") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestRenderResults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playlist := models.NewPlaylist("sp-1", "alice", "Alice's SMAS playlist", "", now)
	playlist.TrackCount = 2

	t.Run("RenderDashboard without contributions", func(t *testing.T) {
		out := RenderDashboard(&tasks.Dashboard{
			Playlist: playlist,
			Link:     models.NewSharingLink("abc12345", "p1", "alice", "Alice", now),
			ShareURL: "http://127.0.0.1:3000/s/abc12345",
		})
		for _, want := range []string{"Alice's SMAS playlist", "http://127.0.0.1:3000/s/abc12345", "No contributions yet"} {
			if !strings.Contains(out, want) {
				t.Errorf("dashboard missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("RenderDashboard with contributions", func(t *testing.T) {
		c := models.NewContribution("p1", "bob", "Bob", []models.ContributedTrack{{URI: "spotify:track:1"}}, now)
		out := RenderDashboard(&tasks.Dashboard{
			Playlist:      playlist,
			Link:          models.NewSharingLink("abc12345", "p1", "alice", "Alice", now),
			ShareURL:      "http://127.0.0.1:3000/s/abc12345",
			Contributions: []*models.Contribution{c},
		})
		if !strings.Contains(out, "Bob added 1 track(s) on 2026-03-01") {
			t.Errorf("dashboard missing contribution line:\n%s", out)
		}
	})

	t.Run("RenderContribution", func(t *testing.T) {
		tracks := []models.ContributedTrack{{URI: "spotify:track:1", Name: "Song", Artist: "Artist"}}
		c := models.NewContribution("p1", "bob", "Bob", tracks, now)
		out := RenderContribution(&tasks.ContributionResult{Contribution: c, Tracks: tracks, Playlist: playlist}, now)

		for _, want := range []string{"Added 1 track(s) to Alice's SMAS playlist", "Artist - Song", "again in 28 day(s)"} {
			if !strings.Contains(out, want) {
				t.Errorf("contribution missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("RenderCooldown", func(t *testing.T) {
		out := RenderCooldown(&shared.CooldownError{ExpiresAt: now.Add(72 * time.Hour), DaysRemaining: 3})
		if !strings.Contains(out, "Try again in 3 day(s)") {
			t.Errorf("unexpected cooldown text: %s", out)
		}
	})

	t.Run("KeyValues", func(t *testing.T) {
		out := KeyValues([2]string{"Account", "alice"}, [2]string{"Expires", "soon"})
		lines := strings.Split(out, "\n")
		if len(lines) != 2 || !strings.Contains(lines[0], "alice") || !strings.Contains(lines[1], "soon") {
			t.Errorf("unexpected key values: %q", out)
		}
	})
}
