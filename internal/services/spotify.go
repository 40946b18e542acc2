// Spotify API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// maxReadRetries bounds 429 retries for GET requests.
	maxReadRetries = 3
	// maxRetryAfter caps how long a single Retry-After is honored.
	maxRetryAfter = 30 * time.Second
	// maxTracksPerAdd is Spotify's limit on URIs per add-items request.
	maxTracksPerAdd = 100
)

// Scopes requested at sign-in.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"playlist-modify-public",
	"playlist-modify-private",
	"ugc-image-upload",
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyOwner is the owner reference embedded in playlists.
type SpotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyTrackTotal struct {
	Total int `json:"total"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Owner         SpotifyOwner        `json:"owner"`
	Public        bool                `json:"public"`
	Collaborative bool                `json:"collaborative"`
	Tracks        spotifyTrackTotal   `json:"tracks"`
	ExternalURLs  spotifyExternalURLs `json:"external_urls"`
	URI           string              `json:"uri"`
}

// SpotifyTopTracks is the paginated response of /me/top/tracks.
type SpotifyTopTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
	Limit int            `json:"limit"`
}

type spotifyCreatePlaylist struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
}

type spotifyAddTracks struct {
	URIs []string `json:"uris"`
}

type spotifySnapshot struct {
	SnapshotID string `json:"snapshot_id"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	HTTPClient     *http.Client
	ReadsPerSecond float64
	Logger         *log.Logger
}

// SpotifyService implements [Provider] and [OAuthService] for the Spotify Web API.
type SpotifyService struct {
	config     *oauth2.Config
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewSpotifyService creates a Spotify client from the configured credentials.
func NewSpotifyService(cfg shared.SpotifyConfig, opts SpotifyOpts) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	burst := 1
	if opts.ReadsPerSecond > 0 {
		limit = rate.Limit(opts.ReadsPerSecond)
		burst = max(1, int(opts.ReadsPerSecond))
	}

	return &SpotifyService{
		config:     NewOAuthConfig(cfg),
		apiURL:     strings.TrimRight(orDefault(cfg.APIURL, spotifyBaseURL), "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     opts.Logger.With("service", "spotify"),
		sleep:      sleepContext,
	}, nil
}

// NewOAuthConfig builds the authorization code flow configuration for Spotify.
func NewOAuthConfig(cfg shared.SpotifyConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   orDefault(cfg.AuthURL, spotifyAuthURL),
			TokenURL:  orDefault(cfg.TokenURL, spotifyTokenURL),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// CurrentUser retrieves the profile for accessToken.
func (s *SpotifyService) CurrentUser(ctx context.Context, accessToken string) (*Profile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, accessToken, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &Profile{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email}, nil
}

// TopTracks retrieves the user's top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, accessToken string, limit int, timeRange string) ([]Track, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if timeRange == "" {
		timeRange = "short_term"
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("time_range", timeRange)

	var response SpotifyTopTracks
	if err := s.doRequest(ctx, accessToken, http.MethodGet, "/me/top/tracks?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// CreatePlaylist creates a playlist for userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, accessToken, userID string, spec PlaylistSpec) (*Playlist, error) {
	if userID == "" || spec.Name == "" {
		return nil, fmt.Errorf("%w: user id and playlist name are required", shared.ErrInvalidInput)
	}

	body := spotifyCreatePlaylist{
		Name:          spec.Name,
		Description:   spec.Description,
		Public:        spec.Public,
		Collaborative: spec.Collaborative,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, accessToken, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}
	return toPlaylist(created), nil
}

// AddTracks appends uris to the playlist in batches of at most 100.
//
// Requests are sent once each. On failure earlier batches stay applied.
func (s *SpotifyService) AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no track uris", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	var snapshot spotifySnapshot
	for start := 0; start < len(uris); start += maxTracksPerAdd {
		end := min(start+maxTracksPerAdd, len(uris))
		if err := s.doRequest(ctx, accessToken, http.MethodPost, endpoint, spotifyAddTracks{URIs: uris[start:end]}, &snapshot); err != nil {
			return "", err
		}
	}
	return snapshot.SnapshotID, nil
}

// UploadCover uploads a base64 encoded JPEG cover. Spotify answers 202 with an empty body.
func (s *SpotifyService) UploadCover(ctx context.Context, accessToken, playlistID string, jpeg []byte) error {
	if len(jpeg) == 0 {
		return fmt.Errorf("%w: empty image", shared.ErrInvalidInput)
	}

	encoded := base64.StdEncoding.EncodeToString(jpeg)
	endpoint := fmt.Sprintf("/playlists/%s/images", url.PathEscape(playlistID))

	req, err := s.newRequest(ctx, accessToken, http.MethodPut, endpoint, strings.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return nil
}

// GetPlaylist retrieves a playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, accessToken, playlistID string) (*Playlist, error) {
	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, accessToken, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}
	return toPlaylist(playlist), nil
}

func (s *SpotifyService) newRequest(ctx context.Context, accessToken, method, endpoint string, body io.Reader) (*http.Request, error) {
	if accessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req, nil
}

// doRequest performs an authenticated JSON request to the Spotify API.
//
// GET requests wait on the read limiter and retry on 429; other methods are sent exactly once.
func (s *SpotifyService) doRequest(ctx context.Context, accessToken, method, endpoint string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	isRead := method == http.MethodGet
	for attempt := 0; ; attempt++ {
		if isRead {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		req, err := s.newRequest(ctx, accessToken, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if result == nil || resp.ContentLength == 0 {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		apiErr := apiError(resp)
		resp.Body.Close()

		if !isRead || apiErr.StatusCode != http.StatusTooManyRequests || attempt >= maxReadRetries {
			return apiErr
		}

		s.logger.Warn("rate limited, backing off", "endpoint", endpoint, "retry_after", apiErr.RetryAfter, "attempt", attempt+1)
		if err := s.sleep(ctx, apiErr.RetryAfter); err != nil {
			return err
		}
	}
}

func apiError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body spotifyErrorBody
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(data) > 0 {
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error.Message
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = time.Second
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			apiErr.RetryAfter = min(time.Duration(secs)*time.Second, maxRetryAfter)
		}
	}
	return apiErr
}

func toTrack(t SpotifyTrack) Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return Track{
		ID:         t.ID,
		URI:        t.URI,
		Name:       t.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
	}
}

func toPlaylist(p SpotifyPlaylist) *Playlist {
	return &Playlist{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		OwnerID:       p.Owner.ID,
		Public:        p.Public,
		Collaborative: p.Collaborative,
		TrackCount:    p.Tracks.Total,
		URL:           p.ExternalURLs.Spotify,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
