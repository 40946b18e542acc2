package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/HienH/smas-vibing/internal/server"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/go-chi/chi/v5/middleware"
)

// cooldownDetails accompanies a 429 for an active contribution cooldown.
type cooldownDetails struct {
	ExpiresAt     time.Time `json:"expiresAt"`
	DaysRemaining int       `json:"daysRemaining"`
}

// statusFor maps a domain error to the response status and client-facing message.
//
// Order matters: owner credential failures wrap refresh errors, so they are matched
// before the 401 group. Delegation and external failures are 500s; the contributor
// cannot fix them by signing in again.
func statusFor(err error) (int, string, any) {
	var cooldown *shared.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests,
			"you have already contributed to this playlist",
			cooldownDetails{ExpiresAt: cooldown.ExpiresAt, DaysRemaining: cooldown.DaysRemaining}
	case errors.Is(err, shared.ErrLinkInvalid),
		errors.Is(err, shared.ErrLinkNotFound),
		errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound, "this sharing link is invalid or no longer active", nil
	case errors.Is(err, shared.ErrNoTracksAvailable):
		return http.StatusUnprocessableEntity, "no top tracks available to contribute", nil
	case errors.Is(err, shared.ErrOwnerCredentialExpired):
		return http.StatusInternalServerError, "the playlist owner needs to sign in again, try again later", nil
	case errors.Is(err, shared.ErrExternalMutation):
		return http.StatusInternalServerError, "spotify rejected the update, try again", nil
	case errors.Is(err, shared.ErrRecordingFailed), errors.Is(err, shared.ErrSlugGenerationExhausted):
		return http.StatusInternalServerError, "something went wrong, try again", nil
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrCredentialNotFound),
		errors.Is(err, shared.ErrRefreshFailed),
		errors.Is(err, shared.ErrUserNotFound),
		errors.Is(err, shared.ErrAccountLinkNotFound):
		return http.StatusUnauthorized, "sign in required", nil
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "only the playlist owner can do that", nil
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusInternalServerError, "spotify is busy, try again later", nil
	case errors.Is(err, shared.ErrAPIRequest):
		return http.StatusInternalServerError, "spotify request failed", nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

// fail writes the mapped error response and logs server-side failures.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, details := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "status", status, "request_id", middleware.GetReqID(r.Context()), "error", err)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	server.WriteJSON(w, status, server.ErrorBody{Error: msg, Details: details})
}
