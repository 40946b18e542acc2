package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
)

const playlistColumns = `id, sequence, spotify_id, owner_account_id, name, description, track_count, is_active, created_at, updated_at`

// PlaylistInput describes a playlist to register.
type PlaylistInput struct {
	SpotifyID      string
	OwnerAccountID string
	Name           string
	Description    string
}

// PlaylistRepository is the registry of external playlists.
//
// At most one active row exists per Spotify playlist id, enforced by a partial unique index.
type PlaylistRepository struct {
	db  *sql.DB
	now Clock
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db, now: time.Now}
}

// GetOrCreate returns the active playlist for in.SpotifyID, inserting one if none exists.
//
// An existing row is returned unchanged; metadata drift is reconciled only through [PlaylistRepository.Update].
// The boolean reports whether a row was inserted.
func (r *PlaylistRepository) GetOrCreate(ctx context.Context, in PlaylistInput) (*models.Playlist, bool, error) {
	existing, err := r.GetBySpotifyID(ctx, in.SpotifyID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil, false, err
	}

	playlist := models.NewPlaylist(in.SpotifyID, in.OwnerAccountID, in.Name, in.Description, r.now())
	if err := playlist.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		sequence, err := NextSequence(ctx, tx, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		playlist.SetID(shared.GenerateID())
		playlist.SetSequence(sequence)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO playlists (`+playlistColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			playlist.ID(), sequence, playlist.SpotifyID, playlist.OwnerAccountID,
			playlist.Name, playlist.Description, playlist.TrackCount, playlist.Active,
			playlist.CreatedAt(), playlist.UpdatedAt(),
		)
		return err
	})
	if isUniqueViolation(err) {
		existing, err := r.GetBySpotifyID(ctx, in.SpotifyID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert playlist: %w", err)
	}

	return playlist, true, nil
}

// Get retrieves a playlist by ID, active or not.
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id))
}

// GetBySpotifyID retrieves the active playlist for an external id.
func (r *PlaylistRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*models.Playlist, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE spotify_id = ? AND is_active = 1`, spotifyID))
}

// ActiveForOwner returns the owner's most recently created active playlist.
func (r *PlaylistRepository) ActiveForOwner(ctx context.Context, ownerAccountID string) (*models.Playlist, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE owner_account_id = ? AND is_active = 1 ORDER BY sequence DESC LIMIT 1`,
		ownerAccountID))
}

// ListByOwner returns every playlist registered by the owner, oldest first.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE owner_account_id = ? ORDER BY sequence ASC`, ownerAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Update saves the playlist's name and description. The external id is never changed.
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := r.now()
	result, err := r.db.ExecContext(ctx,
		`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		playlist.Name, playlist.Description, now, playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())); err != nil {
		return err
	}
	playlist.SetUpdatedAt(now)
	return nil
}

// AddTrackCount increases the recorded track count by n.
func (r *PlaylistRepository) AddTrackCount(ctx context.Context, id string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative track count delta", shared.ErrInvalidInput)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE playlists SET track_count = track_count + ?, updated_at = ? WHERE id = ?`, n, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update track count: %w", err)
	}
	return requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// Deactivate marks the playlist inactive. Its history stays in place.
func (r *PlaylistRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE playlists SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate playlist: %w", err)
	}
	return requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.Playlist, error) {
	playlist, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	return playlist, err
}

func (r *PlaylistRepository) scan(row scanner) (*models.Playlist, error) {
	var (
		id, spotifyID, owner, name, description string
		sequence, trackCount                    int
		active                                  bool
		createdAt, updatedAt                    time.Time
	)

	err := row.Scan(&id, &sequence, &spotifyID, &owner, &name, &description, &trackCount, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPlaylist(spotifyID, owner, name, description, createdAt)
	playlist.SetID(id)
	playlist.SetSequence(sequence)
	playlist.SetUpdatedAt(updatedAt)
	playlist.TrackCount = trackCount
	playlist.Active = active
	return playlist, nil
}
