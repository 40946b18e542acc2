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

// AccountLinkRepository resolves between internal users and external accounts.
//
// Links are written once, when a user first signs in, and never updated.
type AccountLinkRepository struct {
	db *sql.DB
}

// NewAccountLinkRepository creates a new [AccountLinkRepository].
func NewAccountLinkRepository(db *sql.DB) *AccountLinkRepository {
	return &AccountLinkRepository{db: db}
}

// Create inserts link. Returns [shared.ErrAlreadyExists] if the account or the user's provider slot is taken.
func (r *AccountLinkRepository) Create(ctx context.Context, link *models.AccountLink) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return insertAccountLink(ctx, tx, link)
	})
}

func insertAccountLink(ctx context.Context, tx *sql.Tx, link *models.AccountLink) error {
	if err := link.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	link.SetID(shared.GenerateID())
	_, err := tx.ExecContext(ctx,
		`INSERT INTO account_links (id, user_id, provider, account_id, profile_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		link.ID(), link.UserID, link.Provider, link.AccountID, link.ProfileID, link.CreatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s account %s", shared.ErrAlreadyExists, link.Provider, link.AccountID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account link: %w", err)
	}
	return nil
}

// GetByAccount finds the link for an external account.
func (r *AccountLinkRepository) GetByAccount(ctx context.Context, provider, accountID string) (*models.AccountLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, account_id, profile_id, created_at FROM account_links WHERE provider = ? AND account_id = ?`,
		provider, accountID,
	))
}

// GetByUser finds the user's link for provider.
func (r *AccountLinkRepository) GetByUser(ctx context.Context, userID, provider string) (*models.AccountLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, account_id, profile_id, created_at FROM account_links WHERE user_id = ? AND provider = ?`,
		userID, provider,
	))
}

func (r *AccountLinkRepository) scanOne(row *sql.Row) (*models.AccountLink, error) {
	var (
		id, userID, provider, accountID, profileID string
		createdAt                                  time.Time
	)

	err := row.Scan(&id, &userID, &provider, &accountID, &profileID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrAccountLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account link: %w", err)
	}

	link := models.NewAccountLink(userID, provider, accountID, profileID, createdAt)
	link.SetID(id)
	return link, nil
}
