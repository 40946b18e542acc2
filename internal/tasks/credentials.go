package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/locks"
	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/charmbracelet/log"
)

// CredentialManager hands out access tokens that are valid for at least [models.RefreshMargin].
//
// Refreshes for one account are serialized through the locker and persisted with compare-and-swap,
// so concurrent callers trigger at most one refresh grant per expiry.
type CredentialManager struct {
	store     *repositories.CredentialRepository
	refresher services.Refresher
	locker    locks.Locker
	logger    *log.Logger
	now       func() time.Time
}

// NewCredentialManager creates a [CredentialManager].
func NewCredentialManager(store *repositories.CredentialRepository, refresher services.Refresher, locker locks.Locker, logger *log.Logger) *CredentialManager {
	return &CredentialManager{
		store:     store,
		refresher: refresher,
		locker:    locker,
		logger:    logger.With("component", "credentials"),
		now:       time.Now,
	}
}

// Fresh returns the credential for accountID, refreshing it first if it expires within the margin.
//
// Errors are [shared.ErrCredentialNotFound] when no credential is stored, or wrap the
// [*shared.RefreshError] when the refresh grant fails.
func (m *CredentialManager) Fresh(ctx context.Context, accountID string) (*models.Credential, error) {
	unlock, err := m.locker.Lock(ctx, "refresh:"+accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credential: %w", err)
	}
	defer unlock()

	cred, err := m.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !cred.NeedsRefresh(m.now()) {
		return cred, nil
	}

	m.logger.Debug("refreshing access token", "account", accountID, "expires_at", cred.ExpiresAt)

	tokens, err := m.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		m.logger.Warn("token refresh failed", "account", accountID, "error", err)
		return nil, fmt.Errorf("failed to refresh credential for %s: %w", accountID, err)
	}

	swapped, err := m.store.CompareAndSwap(ctx, accountID, cred.RefreshToken, *tokens)
	if err != nil {
		return nil, err
	}
	if !swapped {
		m.logger.Info("credential rotated concurrently, using stored tokens", "account", accountID)
	}

	return m.store.Get(ctx, accountID)
}
