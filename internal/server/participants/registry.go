// Package participants enforces the structural rules of a list's
// participant set: name/email shape, the duplicate-email policy, positional
// and identifier-based removal, and the preconditions of a draw.
package participants

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/google/uuid"
)

const minNameLength = 3

const (
	ReasonNameTooShort     = "name must have at least 3 characters"
	ReasonInvalidEmail     = "invalid email"
	ReasonDuplicateEmail   = "email already registered in the list"
	ReasonDuplicatesInList = "the list contains duplicate emails"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError carries every rule a candidate failed.
type ValidationError struct {
	Reasons []string
	cause   error
}

// NewValidationError builds a ValidationError from plain reasons.
func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Reasons, "; ")
}

// Is makes the error match common.ErrValidation and, for duplicate emails,
// common.ErrDuplicateEmail.
func (e *ValidationError) Is(target error) bool {
	if target == common.ErrValidation {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// ValidName reports whether the trimmed name has at least three characters.
func ValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= minNameLength
}

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Validate runs both checks independently and collects all failing reasons.
func Validate(name, email string) error {
	var reasons []string
	if !ValidName(name) {
		reasons = append(reasons, ReasonNameTooShort)
	}
	if !ValidEmail(email) {
		reasons = append(reasons, ReasonInvalidEmail)
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// Registry applies the participant rules to lists in memory. Persisting the
// mutated list is the caller's job.
type Registry struct {
	// RejectDuplicateEmails turns on case-insensitive email uniqueness per list.
	RejectDuplicateEmails bool

	newID func() string
}

// NewRegistry returns a registry with the given duplicate-email policy.
func NewRegistry(rejectDuplicateEmails bool) *Registry {
	return &Registry{
		RejectDuplicateEmails: rejectDuplicateEmails,
		newID:                 uuid.NewString,
	}
}

// Append validates a candidate and appends it to the list.
func (r *Registry) Append(list *models.List, name, email string, now time.Time) (models.Participant, error) {
	if err := Validate(name, email); err != nil {
		return models.Participant{}, err
	}

	email = strings.TrimSpace(email)
	if r.RejectDuplicateEmails && containsEmail(list.Participants, email) {
		return models.Participant{}, &ValidationError{
			Reasons: []string{ReasonDuplicateEmail},
			cause:   common.ErrDuplicateEmail,
		}
	}

	p := models.Participant{
		ID:      r.newID(),
		Name:    strings.TrimSpace(name),
		Email:   email,
		AddedAt: now,
	}
	list.Participants = append(list.Participants, p)
	return p, nil
}

// RemoveAt removes the participant at position index.
func (r *Registry) RemoveAt(list *models.List, index int) (models.Participant, error) {
	if index < 0 || index >= len(list.Participants) {
		return models.Participant{}, fmt.Errorf("%w: %d not in [0, %d)", common.ErrIndexOutOfRange, index, len(list.Participants))
	}
	removed := list.Participants[index]
	list.Participants = append(list.Participants[:index:index], list.Participants[index+1:]...)
	return removed, nil
}

// RemoveByID removes the participant with the given identifier.
func (r *Registry) RemoveByID(list *models.List, id string) (models.Participant, error) {
	for i := range list.Participants {
		if list.Participants[i].ID == id {
			return r.RemoveAt(list, i)
		}
	}
	return models.Participant{}, fmt.Errorf("participant %s: %w", id, common.ErrorNotFound)
}

// CheckDrawable verifies the preconditions of a draw.
func (r *Registry) CheckDrawable(list *models.List) error {
	if n := len(list.Participants); n < common.MinParticipants {
		return fmt.Errorf("%w: need at least %d, have %d", common.ErrInsufficientParticipants, common.MinParticipants, n)
	}
	if r.RejectDuplicateEmails && hasDuplicateEmails(list.Participants) {
		return &ValidationError{
			Reasons: []string{ReasonDuplicatesInList},
			cause:   common.ErrDuplicateEmail,
		}
	}
	return nil
}

func containsEmail(ps []models.Participant, email string) bool {
	for _, p := range ps {
		if strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

func hasDuplicateEmails(ps []models.Participant) bool {
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		key := strings.ToLower(p.Email)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
