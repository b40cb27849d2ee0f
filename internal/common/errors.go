package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrPersistence     = errors.New("persistence failure")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Participant registry errors.
	ErrValidation      = errors.New("validation error")
	ErrDuplicateEmail  = errors.New("email already registered in the list")
	ErrIndexOutOfRange = errors.New("participant index out of range")

	// Draw errors.
	ErrInsufficientParticipants = errors.New("insufficient participants")
	ErrAlreadyInProgress        = errors.New("draw already in progress")
	ErrListBusy                 = errors.New("list is being modified")
	ErrNotificationFailed       = errors.New("notification failed")
	ErrDrawNotFound             = errors.New("draw not found")
	ErrNothingToResend          = errors.New("draw has no failed notifications")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
