package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/HienH/smas-vibing/internal/locks"
	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
)

// app is the wired set of stores and workflows a command runs against.
type app struct {
	db            *sql.DB
	provider      services.Provider
	oauth         services.OAuthService
	users         *repositories.UserRepository
	accountLinks  *repositories.AccountLinkRepository
	credentials   *repositories.CredentialRepository
	playlists     *repositories.PlaylistRepository
	links         *repositories.LinkRepository
	contributions *repositories.ContributionRepository
	locker        locks.Locker
	accounts      *tasks.AccountService
	manager       *tasks.CredentialManager
	provisioner   *tasks.Provisioner
	workflow      *tasks.ContributionWorkflow
	cover         []byte
	closers       []func() error
}

// Close releases the database and any Redis connection.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// account resolves a Spotify account id to its link.
func (a *app) account(ctx context.Context, accountID string) (*models.AccountLink, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: --account", shared.ErrMissingArgument)
	}
	return a.accountLinks.GetByAccount(ctx, models.ProviderSpotify, accountID)
}

// spotify returns the injected provider or builds the Spotify client from config.
func (r *Runner) spotify(config *shared.Config) (services.Provider, services.OAuthService, services.Refresher, error) {
	if r.provider != nil {
		return r.provider, r.oauth, r.refresher, nil
	}

	svc, err := services.NewSpotifyService(config.Credentials.Spotify, services.SpotifyOpts{
		HTTPClient:     r.httpClient,
		ReadsPerSecond: config.RateLimit.SpotifyReadsPerSecond,
		Logger:         r.logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	r.provider, r.oauth, r.refresher = svc, svc, svc.Refresher()
	return r.provider, r.oauth, r.refresher, nil
}

// open connects to the database and lock backend and builds the workflows.
//
// File databases must already be migrated; emulator databases are migrated here.
func (r *Runner) open(ctx context.Context, config *shared.Config) (*app, error) {
	provider, oauth, refresher, err := r.spotify(config)
	if err != nil {
		return nil, err
	}

	path := config.DatabasePath()
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	a := &app{db: db, provider: provider, oauth: oauth, closers: []func() error{db.Close}}

	if shared.IsMemoryDatabase(path) {
		if err := shared.RunMigrations(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := requireMigrated(db); err != nil {
			a.Close()
			return nil, err
		}
	}

	if config.Redis.Enabled {
		client, err := locks.NewRedisClient(ctx, config.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.locker = locks.NewRedisLocker(client, locks.RedisOpts{
			Prefix: config.Redis.Prefix,
			TTL:    config.Redis.LockTTL(),
			Logger: r.logger,
		})
		r.logger.Debug("using redis locks", "addr", config.Redis.Addr)
	} else {
		a.locker = locks.NewKeyedMutex()
	}

	if p := config.Contributions.CoverImagePath; p != "" {
		if a.cover, err = os.ReadFile(p); err != nil {
			r.logger.Warn("skipping playlist cover", "path", p, "error", err)
			a.cover = nil
		}
	}

	a.users = repositories.NewUserRepository(db)
	a.accountLinks = repositories.NewAccountLinkRepository(db)
	a.credentials = repositories.NewCredentialRepository(db)
	a.playlists = repositories.NewPlaylistRepository(db)
	a.links = repositories.NewLinkRepository(db)
	a.contributions = repositories.NewContributionRepository(db)

	a.accounts = tasks.NewAccountService(provider, a.users, a.accountLinks, a.credentials, r.logger)
	a.manager = tasks.NewCredentialManager(a.credentials, refresher, a.locker, r.logger)
	a.provisioner = tasks.NewProvisioner(provider, a.accounts, a.manager, a.playlists, a.links, a.contributions, a.locker,
		tasks.ProvisionerOpts{BaseURL: config.Server.BaseURL, Cover: a.cover, Logger: r.logger})
	a.workflow = tasks.NewContributionWorkflow(provider, a.manager, a.playlists, a.links, a.contributions, a.locker,
		tasks.WorkflowOpts{
			TopTracksLimit: config.Contributions.TopTracksLimit,
			TimeRange:      config.Contributions.TimeRange,
			Logger:         r.logger,
		})

	return a, nil
}

func requireMigrated(db *sql.DB) error {
	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("%w: migration %04d_%s is pending, run 'smas setup database'", shared.ErrInvalidConfig, s.Version, s.Name)
		}
	}
	return nil
}
