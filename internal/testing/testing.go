// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"golang.org/x/oauth2"
)

// AddTracksCall records one [MockProvider.AddTracks] invocation.
type AddTracksCall struct {
	Token      string
	PlaylistID string
	URIs       []string
}

// MockProvider is an in-memory [services.Provider].
//
// Profiles and top tracks are keyed by access token. Unknown tokens get a 401 [services.APIError].
type MockProvider struct {
	mu sync.Mutex

	Profiles     map[string]*services.Profile
	TopTrackSets map[string][]services.Track
	Playlists    map[string]*services.Playlist

	TopTracksErr error
	CreateErr    error
	AddErr       error
	CoverErr     error
	GetErr       error

	AddCalls    []AddTracksCall
	CreateCalls int
	Covers      map[string][]byte
}

// NewMockProvider creates an empty [MockProvider].
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Profiles:     make(map[string]*services.Profile),
		TopTrackSets: make(map[string][]services.Track),
		Playlists:    make(map[string]*services.Playlist),
		Covers:       make(map[string][]byte),
	}
}

// AddUser registers a profile and its top tracks under token.
func (m *MockProvider) AddUser(token string, profile services.Profile, tracks ...services.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Profiles[token] = &profile
	m.TopTrackSets[token] = tracks
}

// Calls returns a copy of the recorded AddTracks calls.
func (m *MockProvider) Calls() []AddTracksCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AddTracksCall(nil), m.AddCalls...)
}

func (m *MockProvider) CurrentUser(ctx context.Context, token string) (*services.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[token]
	if !ok {
		return nil, &services.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid access token"}
	}
	profile := *p
	return &profile, nil
}

func (m *MockProvider) TopTracks(ctx context.Context, token string, limit int, timeRange string) ([]services.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TopTracksErr != nil {
		return nil, m.TopTracksErr
	}
	if _, ok := m.Profiles[token]; !ok {
		return nil, &services.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid access token"}
	}
	tracks := m.TopTrackSets[token]
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return append([]services.Track(nil), tracks...), nil
}

func (m *MockProvider) CreatePlaylist(ctx context.Context, token, userID string, spec services.PlaylistSpec) (*services.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	p := &services.Playlist{
		ID:            fmt.Sprintf("spotify-playlist-%d", m.CreateCalls),
		Name:          spec.Name,
		Description:   spec.Description,
		OwnerID:       userID,
		Public:        spec.Public,
		Collaborative: spec.Collaborative,
	}
	m.Playlists[p.ID] = p
	created := *p
	return &created, nil
}

func (m *MockProvider) AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls = append(m.AddCalls, AddTracksCall{Token: token, PlaylistID: playlistID, URIs: append([]string(nil), uris...)})
	if m.AddErr != nil {
		return "", m.AddErr
	}
	if p, ok := m.Playlists[playlistID]; ok {
		p.TrackCount += len(uris)
	}
	return fmt.Sprintf("snapshot-%d", len(m.AddCalls)), nil
}

func (m *MockProvider) UploadCover(ctx context.Context, token, playlistID string, jpeg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CoverErr != nil {
		return m.CoverErr
	}
	m.Covers[playlistID] = jpeg
	return nil
}

func (m *MockProvider) GetPlaylist(ctx context.Context, token, playlistID string) (*services.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.Playlists[playlistID]
	if !ok {
		return nil, &services.APIError{StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	playlist := *p
	return &playlist, nil
}

// MockRefresher is a [services.Refresher] returning canned tokens and counting calls.
//
// OnRefresh, when set, runs before the result is returned.
type MockRefresher struct {
	mu        sync.Mutex
	calls     []string
	Tokens    models.Tokens
	Err       error
	OnRefresh func(refreshToken string)
}

func (m *MockRefresher) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	if m.OnRefresh != nil {
		m.OnRefresh(refreshToken)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, refreshToken)
	if m.Err != nil {
		return nil, m.Err
	}
	tokens := m.Tokens
	return &tokens, nil
}

// Calls returns the refresh tokens passed to Refresh, in order.
func (m *MockRefresher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockOAuth is an in-memory [services.OAuthService]. Codes maps authorization codes to the tokens they yield.
type MockOAuth struct {
	mu    sync.Mutex
	Codes map[string]models.Tokens
	Used  []string
}

// NewMockOAuth creates a [MockOAuth] with no known codes.
func NewMockOAuth() *MockOAuth {
	return &MockOAuth{Codes: make(map[string]models.Tokens)}
}

func (m *MockOAuth) AuthURL(state string) string {
	return "https://accounts.example/authorize?state=" + url.QueryEscape(state)
}

func (m *MockOAuth) Exchange(ctx context.Context, code string) (*models.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Used = append(m.Used, code)
	tokens, ok := m.Codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: unknown code %q", shared.ErrAuthFailed, code)
	}
	return &tokens, nil
}

func (m *MockOAuth) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{ClientID: "mock-client"}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
