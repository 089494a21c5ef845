package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for /api routes and as an HTML page elsewhere
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Status is chosen from the error chain by statusFor
//  4. Error is mapped via core.MapError to get a user-friendly message
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered in the format the client expects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
	"github.com/JonMunkholm/DataSweeper/internal/table"
	"github.com/JonMunkholm/DataSweeper/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func newErrorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// statusFor maps an error chain to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge),
		strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, codec.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, codec.ErrParse),
		errors.Is(err, table.ErrEmptyMean):
		return http.StatusUnprocessableEntity
	case errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrDuplicateColumn),
		errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, core.ErrNoFiles),
		errors.Is(err, core.ErrTooManyFiles),
		errors.Is(err, core.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManySessions),
		errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns JSON for API clients
// and an HTML page otherwise.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, r, userMsg, status)
		return
	}
	s.renderPage(w, r, status, "Error",
		templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code),
		templates.UploadForm(s.cfg.Upload.MaxFiles, s.cfg.Upload.MaxFileSize),
	)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	render.Status(r, status)
	render.JSON(w, r, newErrorResponse(msg))
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
