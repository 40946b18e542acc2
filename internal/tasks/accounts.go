package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/repositories"
	"github.com/HienH/smas-vibing/internal/services"
	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/charmbracelet/log"
)

// SignInResult is the account resolved from a completed authorization.
type SignInResult struct {
	User       *models.User
	Link       *models.AccountLink
	Credential *models.Credential
	Created    bool // true on first sign-in
}

// AccountService maps external accounts onto internal users.
//
// Every identity lookup goes through the account link: a Spotify account belongs to exactly one
// user, and the link is created once on first sign-in.
type AccountService struct {
	provider    services.Provider
	users       *repositories.UserRepository
	links       *repositories.AccountLinkRepository
	credentials *repositories.CredentialRepository
	logger      *log.Logger
	now         func() time.Time
}

// NewAccountService creates an [AccountService].
func NewAccountService(provider services.Provider, users *repositories.UserRepository, links *repositories.AccountLinkRepository, credentials *repositories.CredentialRepository, logger *log.Logger) *AccountService {
	return &AccountService{
		provider:    provider,
		users:       users,
		links:       links,
		credentials: credentials,
		logger:      logger.With("component", "accounts"),
		now:         time.Now,
	}
}

// SignIn resolves the account behind tokens, creating the user and link on first sign-in,
// and stores the tokens as the account's credential.
func (s *AccountService) SignIn(ctx context.Context, tokens models.Tokens) (*SignInResult, error) {
	profile, err := s.provider.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch profile: %w", shared.ErrAuthFailed, err)
	}

	result := &SignInResult{}

	link, err := s.links.GetByAccount(ctx, models.ProviderSpotify, profile.ID)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrAccountLinkNotFound):
		link, err = s.createAccount(ctx, profile)
		if errors.Is(err, shared.ErrAlreadyExists) {
			link, err = s.links.GetByAccount(ctx, models.ProviderSpotify, profile.ID)
		} else if err == nil {
			result.Created = true
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	result.Link = link

	user, err := s.users.Get(ctx, link.UserID)
	if err != nil {
		return nil, err
	}
	if profile.DisplayName != "" && user.DisplayName != profile.DisplayName {
		user.DisplayName = profile.DisplayName
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Warn("failed to update display name", "user", user.ID(), "error", err)
		}
	}
	result.User = user

	cred, err := s.credentials.Put(ctx, user.ID(), link.AccountID, tokens)
	if err != nil {
		return nil, err
	}
	result.Credential = cred

	s.logger.Info("signed in", "user", user.ID(), "account", link.AccountID, "created", result.Created)
	return result, nil
}

func (s *AccountService) createAccount(ctx context.Context, profile *services.Profile) (*models.AccountLink, error) {
	now := s.now()
	user := models.NewUser(profile.DisplayName, profile.Email, now)
	link := models.NewAccountLink("", models.ProviderSpotify, profile.ID, profile.ID, now)
	if err := s.users.CreateWithAccount(ctx, user, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Account returns the user and Spotify account link for userID.
func (s *AccountService) Account(ctx context.Context, userID string) (*models.User, *models.AccountLink, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	link, err := s.links.GetByUser(ctx, userID, models.ProviderSpotify)
	if err != nil {
		return nil, nil, err
	}
	return user, link, nil
}
