package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/clock"
	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/auth"
	"github.com/dmitrijs2005/secretsanta/internal/server/config"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/users"
)

// LoginResult is the user together with a freshly issued identity token.
type LoginResult struct {
	User  *models.User
	Token string
}

// UserService handles login by e-mail and resolves identity tokens.
type UserService struct {
	users     users.Repository
	lists     lists.Repository
	jwtSecret []byte
	validity  time.Duration
	clock     clock.Clock
	logger    logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, clk clock.Clock, l logging.Logger) *UserService {
	return &UserService{
		users:     m.Users(),
		lists:     m.Lists(),
		jwtSecret: []byte(cfg.SecretKey),
		validity:  cfg.UserTokenValidityDuration,
		clock:     clk,
		logger:    l.With("module", "user_service"),
	}
}

// Login creates the user on first use and issues a token.
func (s *UserService) Login(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !participants.ValidEmail(email) {
		return nil, participants.NewValidationError(participants.ReasonInvalidEmail)
	}

	now := s.clock.Now()
	user, err := s.users.Upsert(ctx, email, now)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, storeErr(err))
	}

	if err := s.attachLists(ctx, user); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.validity, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user, Token: token}, nil
}

// Authenticate returns the id of the user the token was issued to. Every
// failure matches common.ErrorUnauthorized; expired tokens additionally
// match common.ErrTokenExpired.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret, s.clock.Now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: unknown user", common.ErrorUnauthorized)
		}
		return "", storeErr(err)
	}
	return userID, nil
}

// Get returns the token's user with the ids of the lists they own.
func (s *UserService) Get(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.attachLists(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) attachLists(ctx context.Context, user *models.User) error {
	owned, err := s.lists.ByOwner(ctx, user.ID)
	if err != nil {
		return storeErr(err)
	}
	user.ListIDs = make([]string, 0, len(owned))
	for _, l := range owned {
		user.ListIDs = append(user.ListIDs, l.ID)
	}
	return nil
}
