package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrIndexOutOfRange):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrDrawNotFound), errors.Is(err, common.ErrorNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		code = codes.Unauthenticated
	case errors.Is(err, common.ErrInsufficientParticipants), errors.Is(err, common.ErrNothingToResend):
		code = codes.FailedPrecondition
	case errors.Is(err, common.ErrAlreadyInProgress),
		errors.Is(err, common.ErrListBusy),
		errors.Is(err, common.ErrVersionConflict):
		code = codes.Aborted
	case errors.Is(err, common.ErrNotificationFailed):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
