package web

import (
	"net/http"

	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// Opts holds everything the handlers depend on.
type Opts struct {
	Sessions      *server.Sessions
	OAuth         services.OAuthService
	Provider      services.Provider
	Accounts      *tasks.AccountService
	Credentials   *tasks.CredentialManager
	Provisioner   *tasks.Provisioner
	Workflow      *tasks.ContributionWorkflow
	Playlists     *repositories.PlaylistRepository
	Links         *repositories.LinkRepository
	Contributions *repositories.ContributionRepository
	BaseURL       string
	TopLimit      int
	TimeRange     string
	Logger        *log.Logger
}

// Handlers serves the smas HTTP API.
type Handlers struct {
	sessions      *server.Sessions
	oauth         services.OAuthService
	provider      services.Provider
	accounts      *tasks.AccountService
	credentials   *tasks.CredentialManager
	provisioner   *tasks.Provisioner
	workflow      *tasks.ContributionWorkflow
	playlists     *repositories.PlaylistRepository
	links         *repositories.LinkRepository
	contributions *repositories.ContributionRepository
	baseURL       string
	topLimit      int
	timeRange     string
	logger        *log.Logger
}

// New creates the API handlers.
func New(opts Opts) *Handlers {
	return &Handlers{
		sessions:      opts.Sessions,
		oauth:         opts.OAuth,
		provider:      opts.Provider,
		accounts:      opts.Accounts,
		credentials:   opts.Credentials,
		provisioner:   opts.Provisioner,
		workflow:      opts.Workflow,
		playlists:     opts.Playlists,
		links:         opts.Links,
		contributions: opts.Contributions,
		baseURL:       opts.BaseURL,
		topLimit:      orInt(opts.TopLimit, 5),
		timeRange:     orString(opts.TimeRange, "short_term"),
		logger:        opts.Logger.With("component", "web"),
	}
}

// Routes registers every endpoint on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.health)

	r.Route("/auth/spotify", func(r chi.Router) {
		r.Get("/login", h.login)
		r.Get("/callback", h.callback)
	})
	r.Post("/auth/logout", h.logout)

	r.Get("/sharing/{slug}", h.showLink)
	r.Get("/s/{slug}", h.showLink)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Require)

		r.Get("/dashboard", h.dashboard)
		r.Post("/sharing/create-link", h.createLink)
		r.Post("/sharing/{slug}/revoke", h.revokeLink)
		r.Get("/me/top-tracks", h.topTracks)
		r.Post("/contribute", h.contribute)
		r.Get("/playlists/{id}/contributions", h.listContributions)
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func orInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
