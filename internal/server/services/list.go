package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secretsanta/internal/clock"
	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
)

const ReasonListNameRequired = "list name is required"

// ListService manages lists and their participants. Every mutation holds
// the list's lock and writes with a version check, reloading and retrying
// when another process got there first.
type ListService struct {
	repo     lists.Repository
	auth     Authenticator
	registry *participants.Registry
	locks    *ListLocks
	clock    clock.Clock
	logger   logging.Logger
	newID    func() (string, error)
}

// listIDBytes is the entropy of a list id; ids are 32 hex characters.
const listIDBytes = 16

func newListID() (string, error) {
	return common.MakeRandHexString(listIDBytes)
}

func NewListService(m repomanager.RepositoryManager, auth Authenticator, reg *participants.Registry,
	locks *ListLocks, clk clock.Clock, l logging.Logger) *ListService {
	return &ListService{
		repo:     m.Lists(),
		auth:     auth,
		registry: reg,
		locks:    locks,
		clock:    clk,
		logger:   l.With("module", "list_service"),
		newID:    newListID,
	}
}

// CreateList creates an empty list. ownerToken is optional; when given it
// must resolve to a user, who becomes the owner.
func (s *ListService) CreateList(ctx context.Context, name, ownerToken string) (*models.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, participants.NewValidationError(ReasonListNameRequired)
	}

	var ownerID string
	if ownerToken != "" {
		id, err := s.auth.Authenticate(ctx, ownerToken)
		if err != nil {
			return nil, err
		}
		ownerID = id
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("create list: %w: %w", common.ErrorInternal, err)
	}

	l := &models.List{
		ID:           id,
		Name:         name,
		OwnerID:      ownerID,
		CreatedAt:    s.clock.Now(),
		Participants: []models.Participant{},
		Draws:        []models.DrawRecord{},
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create list: %w", storeErr(err))
	}

	s.logger.Info(ctx, "list created", "list_id", l.ID, "owner_id", ownerID)
	return l, nil
}

func (s *ListService) GetList(ctx context.Context, id string) (*models.List, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get list %s: %w", id, storeErr(err))
	}
	return l, nil
}

// mutate applies fn to a fresh copy of the list under its lock and stores
// the result. Errors returned by fn abort without retry.
func (s *ListService) mutate(ctx context.Context, listID string, fn func(l *models.List) error) (*models.List, error) {
	release, err := s.locks.Acquire(ctx, listID)
	if err != nil {
		return nil, err
	}
	defer release()

	for attempt := 1; ; attempt++ {
		l, err := s.repo.Get(ctx, listID)
		if err != nil {
			return nil, storeErr(err)
		}
		if err := fn(l); err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, l)
		if err == nil {
			return l, nil
		}
		if errors.Is(err, common.ErrVersionConflict) && attempt < maxWriteAttempts {
			s.logger.Warn(ctx, "version conflict, retrying", "list_id", listID, "attempt", attempt)
			continue
		}
		return nil, storeErr(err)
	}
}

// AddParticipant validates and appends a participant, returning the updated
// participant sequence.
func (s *ListService) AddParticipant(ctx context.Context, listID, name, email string) ([]models.Participant, error) {
	l, err := s.mutate(ctx, listID, func(l *models.List) error {
		_, err := s.registry.Append(l, name, email, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add participant to list %s: %w", listID, err)
	}
	return l.Participants, nil
}

// RemoveParticipant removes the participant at index. A positive
// expectedVersion must equal the stored list version, so an index taken
// from a stale view fails with common.ErrVersionConflict instead of
// removing someone else.
func (s *ListService) RemoveParticipant(ctx context.Context, listID string, index int, expectedVersion int64) ([]models.Participant, error) {
	l, err := s.mutate(ctx, listID, func(l *models.List) error {
		if expectedVersion > 0 && l.Version != expectedVersion {
			return fmt.Errorf("%w: list is at version %d, caller saw %d", common.ErrVersionConflict, l.Version, expectedVersion)
		}
		_, err := s.registry.RemoveAt(l, index)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove participant %d from list %s: %w", index, listID, err)
	}
	return l.Participants, nil
}

func (s *ListService) RemoveParticipantByID(ctx context.Context, listID, participantID string) ([]models.Participant, error) {
	l, err := s.mutate(ctx, listID, func(l *models.List) error {
		_, err := s.registry.RemoveByID(l, participantID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove participant %s from list %s: %w", participantID, listID, err)
	}
	return l.Participants, nil
}

// DeleteList removes a list and its draw history. Only the owner may do it;
// lists without an owner cannot be deleted.
func (s *ListService) DeleteList(ctx context.Context, id, callerToken string) error {
	userID, err := s.auth.Authenticate(ctx, callerToken)
	if err != nil {
		return err
	}

	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete list %s: %w", id, storeErr(err))
	}
	if l.OwnerID == "" || l.OwnerID != userID {
		return fmt.Errorf("delete list %s: %w", id, common.ErrorUnauthorized)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete list %s: %w", id, storeErr(err))
	}

	s.logger.Info(ctx, "list deleted", "list_id", id, "user_id", userID)
	return nil
}

// ListsForUser returns the lists owned by the token's user.
func (s *ListService) ListsForUser(ctx context.Context, userToken string) ([]*models.List, error) {
	userID, err := s.auth.Authenticate(ctx, userToken)
	if err != nil {
		return nil, err
	}
	ls, err := s.repo.ByOwner(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return ls, nil
}
