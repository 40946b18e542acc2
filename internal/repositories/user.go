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

// UserRepository persists [models.User] rows.
type UserRepository struct {
	db  *sql.DB
	now Clock
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Create inserts a new user with generated ID and sequence.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, user)
	})
}

// CreateWithAccount inserts user and its first account link in one transaction.
//
// Returns [shared.ErrAlreadyExists] when the external account is already linked.
func (r *UserRepository) CreateWithAccount(ctx context.Context, user *models.User, link *models.AccountLink) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.insert(ctx, tx, user); err != nil {
			return err
		}
		link.UserID = user.ID()
		return insertAccountLink(ctx, tx, link)
	})
}

func (r *UserRepository) insert(ctx context.Context, tx *sql.Tx, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, tx, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	user.SetID(shared.GenerateID())
	user.SetSequence(sequence)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, sequence, display_name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID(), sequence, user.DisplayName, user.Email, user.CreatedAt(), user.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, sequence, display_name, email, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`

	var (
		sequence    int
		userID      string
		displayName string
		email       string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&userID, &sequence, &displayName, &email, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user := models.NewUser(displayName, email, createdAt)
	user.SetID(userID)
	user.SetSequence(sequence)
	user.SetUpdatedAt(updatedAt)
	user.SetDeletedAt(nullTime(deletedAt))
	return user, nil
}

// Update saves the user's profile fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := r.now()
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, email = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		user.DisplayName, user.Email, now, user.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrUserNotFound, user.ID())); err != nil {
		return err
	}
	user.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireOneRow(result, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id))
}
