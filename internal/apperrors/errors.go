package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Transport level failures, never confused with auth failures
	ErrServerUnreachable = errors.New("cannot connect to the server, please check that the backend is running")
	ErrTimeout           = errors.New("request timed out")

	// Session lifecycle
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionTerminated  = errors.New("session ended, please log in again")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTokenResp   = errors.New("invalid token response: missing access or refresh token")
	ErrBodyNotReplayable  = errors.New("request body can not be replayed")

	// Backend replied with status the client reacts on
	ErrUnauthorized = errors.New("authorization failed")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error, please try again later")

	// Token store backends
	ErrStoreUnavailable = errors.New("token store unavailable")

	// Weather service
	ErrWeatherKeyMissing   = errors.New("weather API key is not configured")
	ErrCityRequired        = errors.New("city name is required")
	ErrCityNotFound        = errors.New("city not found")
	ErrWeatherInvalidKey   = errors.New("invalid weather API key")
	ErrWeatherRateLimited  = errors.New("too many requests, please try again later")
	ErrWeatherUnavailable  = errors.New("failed to fetch weather data")

	// Local tools
	ErrChecklistItemAbsent = errors.New("checklist item not found")
	ErrChecklistItemEmpty  = errors.New("checklist item text is required")
	ErrRouteTooShort       = errors.New("add at least 2 destinations with coordinates to build a route")
)

// APIError is a non-2xx reply of the Triply backend.
// The backend answers with a Django REST style payload: {"detail": "..."},
// {"non_field_errors": ["..."]} or {"field": ["..."]}
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string

	// Sentinel to match with errors.Is, may be nil
	Kind error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d, message=%s", e.StatusCode, e.Message())
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Message returns the most user friendly message available
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if msgs := e.Fields["non_field_errors"]; len(msgs) > 0 {
		return strings.Join(msgs, " ")
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
		}
		return strings.Join(parts, "; ")
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// AuthError is login or registration failure with message ready to show
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when a payload is rejected before it reaches the backend
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage extracts message that is safe to show to a user
// Falls back to the fallback when nothing specific is known
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	var validationErr *ValidationError
	var authErr *AuthError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.Is(err, ErrSessionTerminated):
		return "Your session expired, please log in again. Unsaved changes were not sent."
	case errors.Is(err, ErrServerUnreachable):
		return "Server is unreachable. Please ensure the backend is running."
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond."
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" || len(apiErr.Fields) > 0 {
			return apiErr.Message()
		}
		return fallback
	default:
		return fallback
	}
}
