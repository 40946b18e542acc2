package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/ui"
	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v3"
)

type authStatus struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
}

// AuthLogin signs in through the browser.
//
// A temporary callback server listens on the configured redirect URI until the
// authorization code arrives or --timeout elapses.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	redirect, err := url.Parse(config.Credentials.Spotify.RedirectURI)
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("%w: redirect_uri %q", shared.ErrInvalidConfig, config.Credentials.Spotify.RedirectURI)
	}

	a, err := r.open(ctx, config)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(a.oauth, state, redirect.Path)
	router := chi.NewRouter()
	handler.Routes(router)

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(srvCtx, redirect.Host, router, r.logger) }()

	authURL := a.oauth.AuthURL(state)
	r.writePlain("Opening browser to authorize smas. If it does not open, visit:\n%s\n", authURL)
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serveErr:
		if err == nil {
			err = fmt.Errorf("%w: callback server stopped", shared.ErrAuthFailed)
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: timed out waiting for authorization", shared.ErrAuthFailed)
	}

	stopServer()
	if err := <-serveErr; err != nil {
		r.logger.Warn("callback server", "error", err)
	}

	if err := result.Error(); err != nil {
		return err
	}

	signed, err := a.accounts.SignIn(ctx, *result.Tokens)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", ui.Success("✓ Signed in as "+signed.User.Name()))
	r.writePlain("%s\n", ui.KeyValues(
		[2]string{"Account", signed.Link.AccountID},
		[2]string{"Expires", signed.Credential.ExpiresAt.Local().Format(time.DateTime)},
	))
	return nil
}

// AuthStatus shows the stored credential for --account, refreshing it first with --refresh.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := r.open(ctx, config)
	if err != nil {
		return err
	}
	defer a.Close()

	link, err := a.account(ctx, cmd.String("account"))
	if err != nil {
		return err
	}
	user, err := a.users.Get(ctx, link.UserID)
	if err != nil {
		return err
	}

	cred, err := a.credentials.Get(ctx, link.AccountID)
	if cmd.Bool("refresh") {
		cred, err = a.manager.Fresh(ctx, link.AccountID)
	}
	if err != nil {
		return err
	}

	status := authStatus{
		UserID:    user.ID(),
		Name:      user.Name(),
		AccountID: link.AccountID,
		ExpiresAt: cred.ExpiresAt,
		Expired:   !time.Now().Before(cred.ExpiresAt),
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	state := ui.Success("valid")
	if status.Expired {
		state = ui.Warning("expired")
	}
	r.writePlain("%s\n%s\n", ui.Title(status.Name), ui.KeyValues(
		[2]string{"User", status.UserID},
		[2]string{"Account", status.AccountID},
		[2]string{"Token", state},
		[2]string{"Expires", status.ExpiresAt.Local().Format(time.DateTime)},
	))
	return nil
}
