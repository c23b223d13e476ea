package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with full technical details and the request ID (server-side)
//   - Mapped via core.MapError to a coded, user-friendly message
//   - Rendered as JSON for /api routes and JSON clients, or as the
//     dashboard page with an alert for browser form posts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/walletrecon/internal/core"
	"github.com/JonMunkholm/walletrecon/internal/logging"
	"github.com/JonMunkholm/walletrecon/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes a user-friendly response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Warn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}
	s.respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML re-renders the upload form with the error above it.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	alert := templates.ErrorAlert(msg.Message, msg.Action, msg.Code)
	page := templates.Dashboard(s.formDate(r), alert)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// statusFor picks the HTTP status for a reconciliation error.
func statusFor(err error) int {
	var schemaErr *core.SchemaError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrMissingInput),
		errors.Is(err, core.ErrInvalidAnalysisDate),
		errors.Is(err, core.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch core.MapError(err).Code {
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	case "FILE002":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
