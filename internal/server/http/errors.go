package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	codeInvalidRequestBody      = "invalid_request_body"
	codeValidation              = "validation_error"
	codeIndexOutOfRange         = "index_out_of_range"
	codeNotFound                = "not_found"
	codeDrawNotFound            = "draw_not_found"
	codeUnauthorized            = "unauthorized"
	codeInsufficientParticipant = "insufficient_participants"
	codeDrawInProgress          = "draw_in_progress"
	codeListBusy                = "list_busy"
	codeVersionConflict         = "version_conflict"
	codeNothingToResend         = "nothing_to_resend"
	codeNotificationFailed      = "notification_failed"
	codePersistence             = "persistence_error"
	codeUnavailable             = "unavailable"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Reasons []string `json:"reasons,omitempty"`
	DrawID  string   `json:"drawId,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

// classify maps a service error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, common.ErrIndexOutOfRange):
		return http.StatusBadRequest, codeIndexOutOfRange
	case errors.Is(err, common.ErrDrawNotFound):
		return http.StatusNotFound, codeDrawNotFound
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, common.ErrInsufficientParticipants):
		return http.StatusUnprocessableEntity, codeInsufficientParticipant
	case errors.Is(err, common.ErrAlreadyInProgress):
		return http.StatusConflict, codeDrawInProgress
	case errors.Is(err, common.ErrListBusy):
		return http.StatusConflict, codeListBusy
	case errors.Is(err, common.ErrVersionConflict):
		return http.StatusConflict, codeVersionConflict
	case errors.Is(err, common.ErrNothingToResend):
		return http.StatusConflict, codeNothingToResend
	case errors.Is(err, common.ErrNotificationFailed):
		return http.StatusBadGateway, codeNotificationFailed
	case errors.Is(err, common.ErrPersistence):
		return http.StatusInternalServerError, codePersistence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := classify(err)

	resp := errorResponse{Error: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		resp.Error = "internal error"
	}

	var verr *participants.ValidationError
	if errors.As(err, &verr) {
		resp.Reasons = verr.Reasons
	}
	var nerr *services.NotificationError
	if errors.As(err, &nerr) {
		resp.DrawID = nerr.DrawID
		resp.Failed = nerr.Failed
	}

	c.AbortWithStatusJSON(status, resp)
}
