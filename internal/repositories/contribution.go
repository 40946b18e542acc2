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

const contributionColumns = `id, sequence, playlist_id, contributor_id, contributor_name, created_at_ms, expires_at_ms`

// ContributionRepository is the contribution ledger.
//
// Rows are never deleted. The cooldown for a (playlist, contributor) pair is decided by its
// most recent row: the pair is blocked while now is before that row's expiry.
type ContributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new [ContributionRepository].
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// HasActiveContribution returns the pair's most recent contribution and whether it is still active at now.
//
// When no row exists the contribution is nil and the result false.
func (r *ContributionRepository) HasActiveContribution(ctx context.Context, playlistID, contributorID string, now time.Time) (*models.Contribution, bool, error) {
	c, err := latestContribution(ctx, r.db, playlistID, contributorID)
	if errors.Is(err, shared.ErrContributionNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, c.IsActive(now), nil
}

// Create records c and its tracks in one transaction.
//
// The cooldown is checked again inside the transaction; if another active contribution for the
// same pair committed first, Create returns a [*shared.CooldownError] and writes nothing.
func (r *ContributionRepository) Create(ctx context.Context, c *models.Contribution) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		latest, err := latestContribution(ctx, tx, c.PlaylistID, c.ContributorID)
		switch {
		case err == nil && latest.IsActive(c.CreatedAt()):
			return &shared.CooldownError{ExpiresAt: latest.ExpiresAt, DaysRemaining: latest.DaysRemaining(c.CreatedAt())}
		case err != nil && !errors.Is(err, shared.ErrContributionNotFound):
			return err
		}

		sequence, err := NextSequence(ctx, tx, "contributions")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		c.SetID(shared.GenerateID())
		c.SetSequence(sequence)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO contributions (`+contributionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID(), sequence, c.PlaylistID, c.ContributorID, c.ContributorName,
			c.CreatedAt().UnixMilli(), c.ExpiresAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert contribution: %w", err)
		}

		for i, t := range c.Tracks {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO contribution_tracks (contribution_id, position, uri, name, artist, album) VALUES (?, ?, ?, ?, ?, ?)`,
				c.ID(), i, t.URI, t.Name, t.Artist, t.Album,
			)
			if err != nil {
				return fmt.Errorf("failed to insert contribution track: %w", err)
			}
		}
		return nil
	})
}

// Get returns a contribution with its tracks.
func (r *ContributionRepository) Get(ctx context.Context, id string) (*models.Contribution, error) {
	c, err := scanContribution(r.db.QueryRowContext(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := loadTracks(ctx, r.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPlaylist returns the playlist's contributions, newest first, with tracks.
func (r *ContributionRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.Contribution, error) {
	return r.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE playlist_id = ? ORDER BY created_at_ms DESC, sequence DESC`, playlistID)
}

// ListByContributor returns a contributor's contributions across playlists, newest first, with tracks.
func (r *ContributionRepository) ListByContributor(ctx context.Context, contributorID string) ([]*models.Contribution, error) {
	return r.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE contributor_id = ? ORDER BY created_at_ms DESC, sequence DESC`, contributorID)
}

func (r *ContributionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}

	var contributions []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	// Tracks are loaded after the outer rows are closed; an in-memory database has a single connection.
	for _, c := range contributions {
		if err := loadTracks(ctx, r.db, c); err != nil {
			return nil, err
		}
	}
	return contributions, nil
}

func latestContribution(ctx context.Context, q querier, playlistID, contributorID string) (*models.Contribution, error) {
	return scanContribution(q.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		WHERE playlist_id = ? AND contributor_id = ?
		ORDER BY created_at_ms DESC, sequence DESC LIMIT 1`,
		playlistID, contributorID))
}

func loadTracks(ctx context.Context, q querier, c *models.Contribution) error {
	rows, err := q.QueryContext(ctx,
		`SELECT uri, name, artist, album FROM contribution_tracks WHERE contribution_id = ? ORDER BY position ASC`, c.ID())
	if err != nil {
		return fmt.Errorf("failed to query contribution tracks: %w", err)
	}
	defer rows.Close()

	c.Tracks = c.Tracks[:0]
	for rows.Next() {
		var t models.ContributedTrack
		if err := rows.Scan(&t.URI, &t.Name, &t.Artist, &t.Album); err != nil {
			return fmt.Errorf("failed to scan contribution track: %w", err)
		}
		c.Tracks = append(c.Tracks, t)
	}
	return rows.Err()
}

func scanContribution(row scanner) (*models.Contribution, error) {
	var (
		id, playlistID, contributorID, contributorName string
		sequence                                       int
		createdAtMS, expiresAtMS                       int64
	)

	err := row.Scan(&id, &sequence, &playlistID, &contributorID, &contributorName, &createdAtMS, &expiresAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrContributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contribution: %w", err)
	}

	c := models.NewContribution(playlistID, contributorID, contributorName, nil, time.UnixMilli(createdAtMS))
	c.SetID(id)
	c.SetSequence(sequence)
	c.SetUpdatedAt(c.CreatedAt())
	c.ExpiresAt = time.UnixMilli(expiresAtMS).UTC()
	return c, nil
}
