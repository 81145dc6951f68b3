package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidResponse marks a 2xx response missing a field the client needs.
	ErrInvalidResponse = errors.New("invalid response format from server")
	// ErrBackendUnavailable is returned while the circuit breaker is open.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// Retryable reports whether the failure is on the server side.
func (e *APIError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

func invalidResponse(endpoint, field string) error {
	return fmt.Errorf("%s: missing %q: %w", endpoint, field, ErrInvalidResponse)
}

// Message renders err as the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, ErrInvalidResponse):
		return "Invalid response format from server"
	case errors.Is(err, ErrBackendUnavailable):
		return "Backend is unavailable, try again in a moment"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, context.Canceled):
		return "Request canceled"
	}
	return err.Error()
}

// parseDetail extracts the human-readable message from an error body.
// The backend sends {"detail": "..."} or a validation list {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte, status int) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		return text
	}
	if st := http.StatusText(status); st != "" {
		return st
	}
	return fmt.Sprintf("request failed with status %d", status)
}
