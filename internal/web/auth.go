package web

import (
	"net/http"
	"strings"

	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/shared"
)

const (
	stateCookie  = "smas_oauth_state"
	nextCookie   = "smas_next"
	authPath     = "/auth/spotify"
	stateMaxAge  = 600
	defaultAfter = "/dashboard"
)

// login redirects to the Spotify consent page. The state is kept in a short-lived cookie.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	setShortCookie(w, stateCookie, state)
	if next := r.URL.Query().Get("next"); isLocalPath(next) {
		setShortCookie(w, nextCookie, next)
	}

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusFound)
}

// callback finishes sign-in: exchange the code, resolve the account, issue a session.
func (h *Handlers) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != query.Get("state") {
		h.fail(w, r, shared.ErrInvalidState)
		return
	}
	clearCookie(w, stateCookie)

	if e := query.Get("error"); e != "" {
		h.logger.Warn("authorization denied", "error", e)
		server.WriteError(w, http.StatusUnauthorized, "authorization was denied")
		return
	}

	tokens, err := h.oauth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.accounts.SignIn(r.Context(), *tokens)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.sessions.Issue(w, result.User.ID(), result.Link.AccountID, result.User.Name()); err != nil {
		h.fail(w, r, err)
		return
	}

	next := defaultAfter
	if c, err := r.Cookie(nextCookie); err == nil && isLocalPath(c.Value) {
		next = c.Value
		clearCookie(w, nextCookie)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// isLocalPath accepts only same-origin absolute paths, so next cannot redirect off-site.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

func setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     authPath,
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: authPath, MaxAge: -1, HttpOnly: true})
}
