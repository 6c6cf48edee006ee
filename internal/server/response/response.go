// Package response provides HTTP response helpers for the emr server.
// Pages are written as plain strings with Page; rejections produced by
// middleware use a JSON envelope with a data field and an error field.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/emrhub/emr/pkg/errors"
)

const (
	// ContentTypeHTML is the content type pages are served with.
	ContentTypeHTML = "text/html; charset=utf-8"

	// ForbiddenMessage is returned to clients whose API key does not match.
	ForbiddenMessage = "Forbidden: Invalid API Key"
)

// Response represents the JSON envelope used for error responses.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Page writes a static text body with the given status.
func Page(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", ContentTypeHTML)
	w.WriteHeader(status)
	// Write errors mean the client went away; nothing useful to do.
	_, _ = io.WriteString(w, body)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Forbidden writes a 403 error response.
func Forbidden(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusForbidden, Fail("FORBIDDEN", message, details))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, message string) {
	JSON(w, http.StatusTooManyRequests, Fail(
		"RATE_LIMITED",
		"Rate limit exceeded",
		message,
	))
}

// InternalError writes a 500 error response without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ErrorFromType maps typed errors to HTTP responses. An AuthenticationError
// message becomes the details of the 403 body.
func ErrorFromType(w http.ResponseWriter, err error) {
	switch {
	case errors.IsAPIKeyError(err):
		details := ""
		var authErr *errors.AuthenticationError
		if errors.As(err, &authErr) {
			details = authErr.Message
		}
		Forbidden(w, ForbiddenMessage, details)
	case errors.IsRateLimited(err):
		RateLimited(w, "Too many requests. Please try again later.")
	default:
		InternalError(w, err)
	}
}
