package main

import (
	"context"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
	"github.com/HienH/smas-vibing/internal/ui"
	"github.com/urfave/cli/v3"
)

type dashboardJSON struct {
	PlaylistID    string    `json:"playlistId"`
	SpotifyID     string    `json:"spotifyId"`
	Name          string    `json:"name"`
	TrackCount    int       `json:"trackCount"`
	Slug          string    `json:"slug"`
	ShareURL      string    `json:"shareUrl"`
	UsageCount    int       `json:"usageCount"`
	Contributions int       `json:"contributions"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Dashboard shows the owner's playlist and sharing link, creating whichever is missing.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := r.open(ctx, config)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.account(ctx, cmd.String("account"))
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")

	var progress chan tasks.ProgressUpdate
	var done <-chan struct{}
	if !asJSON {
		progress = make(chan tasks.ProgressUpdate, 8)
		done = ui.PrintProgress(r.output, progress)
	}

	d, err := a.provisioner.Dashboard(ctx, progress, account.UserID)
	if progress != nil {
		close(progress)
		<-done
	}
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(dashboardJSON{
			PlaylistID:    d.Playlist.ID(),
			SpotifyID:     d.Playlist.SpotifyID,
			Name:          d.Playlist.Name,
			TrackCount:    d.Playlist.TrackCount,
			Slug:          d.Link.Slug,
			ShareURL:      d.ShareURL,
			UsageCount:    d.Link.UsageCount,
			Contributions: len(d.Contributions),
			CreatedAt:     d.Playlist.CreatedAt(),
		}, cmd.Bool("pretty"))
	}

	return r.writePlain("%s\n", ui.RenderDashboard(d))
}

// LinksRevoke deactivates one of the owner's sharing links.
//
// The next dashboard load issues a new slug.
func (r *Runner) LinksRevoke(ctx context.Context, cmd *cli.Command) error {
	slug := cmd.StringArg("slug")
	if slug == "" {
		return fmt.Errorf("%w: slug", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := r.open(ctx, config)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.account(ctx, cmd.String("account"))
	if err != nil {
		return err
	}

	link, err := a.links.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if link.OwnerAccountID != account.AccountID {
		return fmt.Errorf("%w: link %s belongs to another account", shared.ErrForbidden, slug)
	}

	if err := a.links.Deactivate(ctx, link.ID()); err != nil {
		return err
	}

	r.logger.Info("revoked sharing link", "slug", slug)
	return r.writePlain("%s\n", ui.Success("✓ Revoked "+tasks.ShareURL(config.Server.BaseURL, slug)))
}
