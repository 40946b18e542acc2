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

// CredentialRepository stores one [models.Credential] per external account.
//
// Expiry is persisted as unix milliseconds. An empty refresh token in an update never
// overwrites a stored one.
type CredentialRepository struct {
	db  *sql.DB
	now Clock
}

// NewCredentialRepository creates a new [CredentialRepository].
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, now: time.Now}
}

// Get returns the credential for accountID or [shared.ErrCredentialNotFound].
func (r *CredentialRepository) Get(ctx context.Context, accountID string) (*models.Credential, error) {
	query := `
		SELECT id, user_id, account_id, access_token, refresh_token, expires_at_ms, created_at, updated_at
		FROM credentials
		WHERE account_id = ?
	`

	var (
		id, userID, account, access, refresh string
		expiresAtMS                          int64
		createdAt, updatedAt                 time.Time
	)

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&id, &userID, &account, &access, &refresh, &expiresAtMS, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCredentialNotFound, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	tokens := models.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: time.UnixMilli(expiresAtMS)}
	cred := models.NewCredential(userID, account, tokens, createdAt)
	cred.SetID(id)
	cred.SetUpdatedAt(updatedAt)
	return cred, nil
}

// Put creates or replaces the tokens for accountID. Repeating a Put with the same input has no further effect.
func (r *CredentialRepository) Put(ctx context.Context, userID, accountID string, tokens models.Tokens) (*models.Credential, error) {
	cred := models.NewCredential(userID, accountID, tokens, r.now())
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO credentials (id, user_id, account_id, access_token, refresh_token, expires_at_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN credentials.refresh_token ELSE excluded.refresh_token END,
			expires_at_ms = excluded.expires_at_ms,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		shared.GenerateID(), userID, accountID,
		cred.AccessToken, cred.RefreshToken, cred.ExpiresAt.UnixMilli(),
		cred.CreatedAt(), cred.UpdatedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert credential: %w", err)
	}

	return r.Get(ctx, accountID)
}

// CompareAndSwap replaces the tokens for accountID only if the stored refresh token still
// equals previousRefresh. It reports whether the swap happened.
//
// A caller that loses the swap should re-read: another refresh already rotated the tokens.
func (r *CredentialRepository) CompareAndSwap(ctx context.Context, accountID, previousRefresh string, tokens models.Tokens) (bool, error) {
	if tokens.AccessToken == "" {
		return false, fmt.Errorf("%w: access token is required", shared.ErrInvalidInput)
	}

	refresh := tokens.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET access_token = ?, refresh_token = ?, expires_at_ms = ?, updated_at = ? WHERE account_id = ? AND refresh_token = ?`,
		tokens.AccessToken, refresh, models.Millis(tokens.ExpiresAt).UnixMilli(), r.now(), accountID, previousRefresh,
	)
	if err != nil {
		return false, fmt.Errorf("failed to swap credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows == 1, nil
}
