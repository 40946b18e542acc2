package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/formatter"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
	"github.com/HienH/smas-vibing/internal/ui"
	"github.com/urfave/cli/v3"
)

// Contribute adds the signed-in account's top tracks to the playlist behind a sharing link.
func (r *Runner) Contribute(ctx context.Context, cmd *cli.Command) error {
	slug := cmd.StringArg("slug")
	if slug == "" {
		return fmt.Errorf("%w: slug", shared.ErrMissingArgument)
	}
	if !shared.IsValidSlug(slug) {
		return fmt.Errorf("%w: %q", shared.ErrLinkInvalid, slug)
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
	user, err := a.users.Get(ctx, account.UserID)
	if err != nil {
		return err
	}
	cred, err := a.manager.Fresh(ctx, account.AccountID)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := ui.PrintProgress(r.output, progress)

	result, err := a.workflow.Contribute(ctx, progress, tasks.ContributionRequest{
		LinkSlug:  slug,
		TrackURIs: cmd.StringSlice("track"),
		Contributor: tasks.Contributor{
			ID:          user.ID(),
			Name:        user.Name(),
			AccessToken: cred.AccessToken,
		},
	})
	close(progress)
	<-done

	var cooldown *shared.CooldownError
	if errors.As(err, &cooldown) {
		r.writePlain("%s\n", ui.RenderCooldown(cooldown))
		return err
	}
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", ui.RenderContribution(result, time.Now()))
}

// ContributionsList prints the contributions to the owner's active playlist.
func (r *Runner) ContributionsList(ctx context.Context, cmd *cli.Command) error {
	format := formatter.FormatText
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}
	return r.withExport(ctx, cmd, func(a *app, export *formatter.ContributionExport) error {
		return formatter.Write(r.output, export, format)
	})
}

// ContributionsExport writes the owner's contributions to disk, or to stdout when --output is "-".
func (r *Runner) ContributionsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")

	return r.withExport(ctx, cmd, func(a *app, export *formatter.ContributionExport) error {
		if output == "-" {
			return formatter.Write(r.output, export, format)
		}

		var files []string
		switch format {
		case formatter.FormatCSV:
			res, err := formatter.WriteCSVExport(export, output)
			if err != nil {
				return err
			}
			files = append(files, res.TracksFile, res.MetadataFile)
		case formatter.FormatMarkdown:
			res, err := formatter.WriteMarkdownExport(export, output, a.cover)
			if err != nil {
				return err
			}
			files = res.Files
		case formatter.FormatJSON:
			path, err := formatter.WriteJSONExport(export, output)
			if err != nil {
				return err
			}
			files = append(files, path)
		default:
			path, err := formatter.WriteTextExport(export, output)
			if err != nil {
				return err
			}
			files = append(files, path)
		}

		r.logger.Info("exported contributions", "format", format, "contributions", len(export.Contributions))
		for _, f := range files {
			r.writePlain("%s\n", f)
		}
		return nil
	})
}

func (r *Runner) withExport(ctx context.Context, cmd *cli.Command, fn func(*app, *formatter.ContributionExport) error) error {
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

	playlist, err := a.playlists.ActiveForOwner(ctx, account.AccountID)
	if err != nil {
		return err
	}

	contributions, err := a.contributions.ListByPlaylist(ctx, playlist.ID())
	if err != nil {
		return err
	}

	export := &formatter.ContributionExport{Playlist: playlist, Contributions: contributions}
	link, err := a.links.ActiveForPlaylist(ctx, playlist.ID())
	switch {
	case err == nil:
		export.ShareURL = tasks.ShareURL(config.Server.BaseURL, link.Slug)
	case !errors.Is(err, shared.ErrLinkNotFound):
		return err
	}

	return fn(a, export)
}
