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

// MaxSlugAttempts bounds slug generation before [shared.ErrSlugGenerationExhausted] is returned.
const MaxSlugAttempts = 10

const linkColumns = `id, sequence, slug, playlist_id, owner_account_id, owner_name, is_active, usage_count, created_at, updated_at, last_used_at`

// LinkInput describes a sharing link to create.
type LinkInput struct {
	PlaylistID     string
	OwnerAccountID string
	OwnerName      string
}

// LinkRepository persists [models.SharingLink] rows.
//
// Lookups by slug only see active links; a revoked slug is indistinguishable from an unknown one.
type LinkRepository struct {
	db       *sql.DB
	now      Clock
	generate func() (string, error)
}

// NewLinkRepository creates a new [LinkRepository] generating slugs with [shared.GenerateSlug].
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db, now: time.Now, generate: shared.GenerateSlug}
}

// WithGenerator replaces the slug source. Used to issue predictable slugs.
func (r *LinkRepository) WithGenerator(generate func() (string, error)) *LinkRepository {
	r.generate = generate
	return r
}

// CreateUniqueLink creates an active link with a slug not used by any existing link, active or revoked.
func (r *LinkRepository) CreateUniqueLink(ctx context.Context, in LinkInput) (*models.SharingLink, error) {
	for attempt := 0; attempt < MaxSlugAttempts; attempt++ {
		slug, err := r.generate()
		if err != nil {
			return nil, err
		}

		taken, err := r.slugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		link := models.NewSharingLink(slug, in.PlaylistID, in.OwnerAccountID, in.OwnerName, r.now())
		err = r.insert(ctx, link)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", shared.ErrSlugGenerationExhausted, MaxSlugAttempts)
}

func (r *LinkRepository) slugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sharing_links WHERE slug = ?)`, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *LinkRepository) insert(ctx context.Context, link *models.SharingLink) error {
	if err := link.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		sequence, err := NextSequence(ctx, tx, "sharing_links")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		link.SetID(shared.GenerateID())
		link.SetSequence(sequence)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO sharing_links (`+linkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			link.ID(), sequence, link.Slug, link.PlaylistID, link.OwnerAccountID, link.OwnerName,
			link.Active, link.UsageCount, link.CreatedAt(), link.UpdatedAt(), nil,
		)
		return err
	})
}

// GetBySlug returns the active link for slug or [shared.ErrLinkNotFound].
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*models.SharingLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM sharing_links WHERE slug = ? AND is_active = 1`, slug))
}

// Get returns a link by ID regardless of state.
func (r *LinkRepository) Get(ctx context.Context, id string) (*models.SharingLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM sharing_links WHERE id = ?`, id))
}

// ActiveForPlaylist returns the newest active link for the playlist.
func (r *LinkRepository) ActiveForPlaylist(ctx context.Context, playlistID string) (*models.SharingLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM sharing_links WHERE playlist_id = ? AND is_active = 1 ORDER BY sequence DESC LIMIT 1`,
		playlistID))
}

// IncrementUsage adds one to the usage counter and stamps last_used_at.
//
// The increment happens in SQL so concurrent calls are never lost.
func (r *LinkRepository) IncrementUsage(ctx context.Context, id string) error {
	now := r.now()
	result, err := r.db.ExecContext(ctx,
		`UPDATE sharing_links SET usage_count = usage_count + 1, last_used_at = ?, updated_at = ? WHERE id = ?`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("failed to increment link usage: %w", err)
	}
	return requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrLinkNotFound, id))
}

// Deactivate revokes the link. The slug stays reserved.
func (r *LinkRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sharing_links SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}
	return requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrLinkNotFound, id))
}

func (r *LinkRepository) scanOne(row *sql.Row) (*models.SharingLink, error) {
	var (
		id, slug, playlistID, owner, ownerName string
		sequence, usage                        int
		active                                 bool
		createdAt, updatedAt                   time.Time
		lastUsedAt                             sql.NullTime
	)

	err := row.Scan(&id, &sequence, &slug, &playlistID, &owner, &ownerName, &active, &usage, &createdAt, &updatedAt, &lastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sharing link: %w", err)
	}

	link := models.NewSharingLink(slug, playlistID, owner, ownerName, createdAt)
	link.SetID(id)
	link.SetSequence(sequence)
	link.SetUpdatedAt(updatedAt)
	link.Active = active
	link.UsageCount = usage
	link.LastUsedAt = nullTime(lastUsedAt)
	return link, nil
}
