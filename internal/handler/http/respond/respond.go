// Package respond provides JSON response helpers, with error
// sanitization to prevent leaking sensitive information into a client
// response.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// errorBody is the wire shape every error response uses: {detail: string}.
type errorBody struct {
	Detail string `json:"detail"`
}

// Error writes a JSON error response with the given status code,
// un-sanitized. Use SafeError for errors that may carry sensitive
// internal detail.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, errorBody{Detail: err.Error()})
}

// safeSubstrings marks an error message as safe to return verbatim:
// validation-style messages a caller needs to see to fix their
// request, never an internal fault.
var safeSubstrings = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
}

// SafeError sanitizes an error before returning it to the client.
// Validation-shaped messages are passed through; anything else (and
// anything 5xx, regardless of message) is logged in full and replaced
// with a generic message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.Any("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, errorBody{Detail: appErr.UserMsg})
		return
	}

	msg := err.Error()
	isSafe := code < 500 && containsAny(strings.ToLower(msg), safeSubstrings)

	if isSafe {
		JSON(w, code, errorBody{Detail: msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, errorBody{Detail: "internal server error"})
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// AppError carries a user-facing message distinct from its wrapped
// internal error, so a handler can log the real cause while returning
// a clean message to the client.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}
