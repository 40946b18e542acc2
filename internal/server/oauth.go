package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/go-chi/chi/v5"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Tokens *models.Tokens
	err    error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles a single authorization code callback for the CLI login flow.
type OAuthHandler struct {
	provider    services.OAuthService
	state       string
	path        string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates an OAuth handler that serves path and expects state.
// The state token should be cryptographically random.
func NewOAuthHandler(provider services.OAuthService, state, path string) *OAuthHandler {
	return &OAuthHandler{
		provider:   provider,
		state:      state,
		path:       path,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes registers the callback route.
func (h *OAuthHandler) Routes(r chi.Router) {
	r.Get(h.path, h.ServeHTTP)
}

// ServeHTTP validates state, exchanges the authorization code, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		http.Error(w, "callback already handled", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, shared.ErrInvalidState)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description")))
		return
	}

	tokens, err := h.provider.Exchange(context.WithoutCancel(r.Context()), code)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}

	h.Send(OAuthResult{Tokens: tokens})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, signedInPage)
}

// claim marks the callback as used and reports whether this request was first.
func (h *OAuthHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.callbackHit {
		return false
	}
	h.callbackHit = true
	return true
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, err error) {
	h.Send(OAuthResult{err: err})
	http.Error(w, "sign-in failed: "+err.Error(), status)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const signedInPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>smas</title></head>
<body style="font-family:sans-serif;text-align:center;margin-top:20vh">
<h1 style="color:#1DB954">✓ Signed in</h1>
<p>Return to your terminal; this tab can be closed.</p>
</body></html>
`
