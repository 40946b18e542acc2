package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/HienH/smas-vibing/internal/tasks"
	"github.com/go-chi/chi/v5"
)

type createLinkRequest struct {
	PlaylistID string `json:"playlistId"`
	OwnerName  string `json:"ownerName"`
}

type contributeRequest struct {
	PlaylistID string   `json:"playlistId"`
	LinkSlug   string   `json:"linkSlug"`
	TrackURIs  []string `json:"trackUris"`
}

// dashboard provisions the signed-in owner's playlist and sharing link on first visit.
func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	d, err := h.provisioner.Dashboard(r.Context(), nil, session.UserID)
	if errors.Is(err, shared.ErrOwnerCredentialExpired) {
		h.logger.Info("owner credential expired, signing out", "user", session.UserID, "error", err)
		h.sessions.Clear(w)
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, dashboardView{
		User:          userView{ID: d.User.ID(), Name: d.User.Name()},
		Playlist:      toPlaylistView(d.Playlist),
		Link:          toLinkView(d.Link, h.baseURL),
		ShareURL:      d.ShareURL,
		Contributions: toContributionViews(d.Contributions),
	})
}

// createLink returns the playlist's active link, creating one when none is active.
func (h *Handlers) createLink(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	var req createLinkRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.PlaylistID) == "" {
		h.fail(w, r, fmt.Errorf("%w: playlistId", shared.ErrMissingArgument))
		return
	}

	playlist, err := h.ownedPlaylist(r, session, req.PlaylistID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	link, err := h.links.ActiveForPlaylist(r.Context(), playlist.ID())
	status := http.StatusOK
	if errors.Is(err, shared.ErrLinkNotFound) {
		link, err = h.links.CreateUniqueLink(r.Context(), repositories.LinkInput{
			PlaylistID:     playlist.ID(),
			OwnerAccountID: playlist.OwnerAccountID,
			OwnerName:      orString(strings.TrimSpace(req.OwnerName), session.Name),
		})
		status = http.StatusCreated
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	server.WriteJSON(w, status, map[string]linkView{"link": toLinkView(link, h.baseURL)})
}

// showLink returns public metadata for an active link.
func (h *Handlers) showLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	playlist, err := h.playlists.Get(r.Context(), link.PlaylistID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !playlist.Active {
		h.fail(w, r, shared.ErrLinkInvalid)
		return
	}

	server.WriteJSON(w, http.StatusOK, publicLinkView{
		Slug:         link.Slug,
		OwnerName:    link.OwnerName,
		PlaylistName: playlist.Name,
		UsageCount:   link.UsageCount,
	})
}

// revokeLink deactivates an active link. Only the playlist owner may revoke it.
func (h *Handlers) revokeLink(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	link, err := h.links.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if link.OwnerAccountID != session.AccountID {
		h.fail(w, r, shared.ErrForbidden)
		return
	}

	if err := h.links.Deactivate(r.Context(), link.ID()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("link revoked", "slug", link.Slug, "playlist", link.PlaylistID)
	w.WriteHeader(http.StatusNoContent)
}

// topTracks previews what the signed-in user would contribute.
func (h *Handlers) topTracks(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	cred, err := h.credentials.Fresh(r.Context(), session.AccountID)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err))
		return
	}

	tracks, err := h.provider.TopTracks(r.Context(), cred.AccessToken, h.topLimit, h.timeRange)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"tracks": toTrackViews(tracks)})
}

// contribute adds the signed-in user's top tracks to a shared playlist.
func (h *Handlers) contribute(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	var req contributeRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.PlaylistID == "" && req.LinkSlug == "" {
		h.fail(w, r, fmt.Errorf("%w: playlistId or linkSlug", shared.ErrMissingArgument))
		return
	}
	if req.LinkSlug != "" && !shared.IsValidSlug(req.LinkSlug) {
		h.fail(w, r, shared.ErrLinkInvalid)
		return
	}

	cred, err := h.credentials.Fresh(r.Context(), session.AccountID)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err))
		return
	}

	result, err := h.workflow.Contribute(r.Context(), nil, tasks.ContributionRequest{
		PlaylistID: req.PlaylistID,
		LinkSlug:   req.LinkSlug,
		TrackURIs:  req.TrackURIs,
		Contributor: tasks.Contributor{
			ID:          session.UserID,
			Name:        session.Name,
			AccessToken: cred.AccessToken,
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, contributeView{
		Contribution: toContributionView(result.Contribution),
		Playlist:     toPlaylistView(result.Playlist),
		SnapshotID:   result.SnapshotID,
	})
}

// listContributions lists a playlist's contributions, newest first. Owner only.
func (h *Handlers) listContributions(w http.ResponseWriter, r *http.Request) {
	session, err := server.SessionFrom(r.Context())
	if err != nil {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}

	playlist, err := h.ownedPlaylist(r, session, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	contributions, err := h.contributions.ListByPlaylist(r.Context(), playlist.ID())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"contributions": toContributionViews(contributions)})
}

func (h *Handlers) ownedPlaylist(r *http.Request, session *server.Session, id string) (*models.Playlist, error) {
	playlist, err := h.playlists.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !playlist.OwnedBy(session.AccountID) {
		return nil, shared.ErrForbidden
	}
	return playlist, nil
}
