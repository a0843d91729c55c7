package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

// ErrForbidden is returned when the caller may not touch a resource
var ErrForbidden = errors.New("forbidden")

// ErrorResponse is the body of every failed JSON request
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor translates domain errors into HTTP status codes and error codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, board.ErrNotFound), errors.Is(err, member.ErrMemberNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, board.ErrInvalidRequest), errors.Is(err, board.ErrEmptyUpload),
		errors.Is(err, member.ErrInvalidRequest), errors.Is(err, member.ErrEmptyMemberList):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, member.ErrDuplicateLoginID):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, member.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, member.ErrMemberDisabled):
		return http.StatusForbidden, "member_disabled"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError logs err and renders it as JSON with the matching status code.
// Internal errors are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), msg, "error", err)
		message = "An internal server error occurred"
	} else {
		slog.WarnContext(r.Context(), msg, "status", status, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	writeError(w, r, msg, errors.Join(board.ErrInvalidRequest, err))
}
