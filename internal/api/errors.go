// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrServerError indicates a 5xx from the backend.
	ErrServerError = errors.New("backend server error")

	// ErrUnauthorized indicates a 401/403 from the backend.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a 429 from the backend.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoSession indicates a call that requires an initialized
	// session was made before initialization completed.
	ErrNoSession = errors.New("session not initialized")

	// ErrEmptyResponse indicates the backend returned a 2xx with an
	// empty or undecodable body.
	ErrEmptyResponse = errors.New("empty response from backend")
)

// APIError wraps a non-2xx backend response with enough context for
// logging. User-facing rendering never uses this directly; the dialog
// layer maps any transport failure to the system rejection text.
type APIError struct {
	Endpoint string
	Status   int
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d code %s: %s", e.Endpoint, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Unwrap maps the HTTP status class onto a sentinel so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 401 || e.Status == 403:
		return ErrUnauthorized
	case e.Status == 429:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServerError
	}
	return nil
}

// IsServerError reports whether err represents a 5xx backend failure.
// The dialog layer uses this to decide that a turn's feedback loop is
// unavailable.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServerError)
}
