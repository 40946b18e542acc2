package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("emulator") {
		config.Server.Emulator = true
	}
	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := r.open(ctx, config)
	if err != nil {
		return err
	}
	defer a.Close()

	if config.Server.Emulator {
		r.logger.Warn("emulator mode: data is kept in memory and lost on exit")
	}

	handlers := web.New(web.Opts{
		Sessions:      server.NewSessions(config.Session, config.Server.BaseURL),
		OAuth:         a.oauth,
		Provider:      a.provider,
		Accounts:      a.accounts,
		Credentials:   a.manager,
		Provisioner:   a.provisioner,
		Workflow:      a.workflow,
		Playlists:     a.playlists,
		Links:         a.links,
		Contributions: a.contributions,
		BaseURL:       config.Server.BaseURL,
		TopLimit:      config.Contributions.TopTracksLimit,
		TimeRange:     config.Contributions.TimeRange,
		Logger:        r.logger,
	})

	limiter := server.NewRateLimiter(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
	router := server.NewRouter(r.logger, limiter.Limit)
	handlers.Routes(router)

	return server.Serve(ctx, config.Server.Addr(), router, r.logger)
}
