// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func accountFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "account",
		Aliases: []string{"a"},
		Usage:   "Spotify account id to act as",
		Sources: cli.EnvVars("SMAS_ACCOUNT"),
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "emulator",
				Usage: "Use a throwaway in-memory database",
			},
		},
		Action: r.Serve,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a configuration template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Flags:  append([]cli.Flag{configFlag()}, outputFlags()...),
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the latest migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify sign-in",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with Spotify in the browser",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 5 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored credential for an account",
				Flags: append([]cli.Flag{
					configFlag(),
					accountFlag(),
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Refresh the access token if it has expired",
					},
				}, outputFlags()...),
				Action: r.AuthStatus,
			},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show your collaborative playlist, creating it on first use",
		Flags:  append([]cli.Flag{configFlag(), accountFlag()}, outputFlags()...),
		Action: r.Dashboard,
	}
}

func linksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "links",
		Usage: "Sharing link operations",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the active sharing link",
				Flags:  append([]cli.Flag{configFlag(), accountFlag()}, outputFlags()...),
				Action: r.Dashboard,
			},
			{
				Name:      "revoke",
				Usage:     "Deactivate a sharing link",
				ArgsUsage: "<slug>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
				Flags:     []cli.Flag{configFlag(), accountFlag()},
				Action:    r.LinksRevoke,
			},
		},
	}
}

func contributeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "contribute",
		Usage:     "Add your top tracks to a friend's playlist",
		ArgsUsage: "<slug>",
		Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
		Flags: []cli.Flag{
			configFlag(),
			accountFlag(),
			&cli.StringSliceFlag{
				Name:    "track",
				Aliases: []string{"t"},
				Usage:   "Only contribute these top track URIs",
			},
		},
		Action: r.Contribute,
	}
}

func contributionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "contributions",
		Usage: "Contributions to your playlist",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List contributions",
				Flags:  []cli.Flag{configFlag(), accountFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.ContributionsList,
			},
			{
				Name:  "export",
				Usage: "Export contributions to a file",
				Flags: []cli.Flag{
					configFlag(),
					accountFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path, or - for stdout (defaults to the playlist id)",
					},
				},
				Action: r.ContributionsExport,
			},
		},
	}
}
