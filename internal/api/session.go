// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "sync"

// =============================================================================
// SESSION STATE
// =============================================================================

// Session holds the per-page identity handed out by initialization:
// the session id used on every subsequent call and the request id of
// the most recent answered turn. A single Session is shared between
// the UI goroutine and background fetches, so access is guarded.
type Session struct {
	mu        sync.RWMutex
	sessionID string
	requestID string
}

// NewSession returns an empty, not-yet-initialized session.
func NewSession() *Session {
	return &Session{}
}

// Start records the session id from a successful initialization and
// clears any stale request id.
func (s *Session) Start(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.requestID = ""
}

// ID returns the current session id, or "" before initialization.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Ready reports whether initialization has completed.
func (s *Session) Ready() bool {
	return s.ID() != ""
}

// SetRequestID records the request id of the latest answered turn.
func (s *Session) SetRequestID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestID = id
}

// RequestID returns the request id of the latest answered turn.
func (s *Session) RequestID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestID
}

// Reset clears all session identity, for logout or idle timeout.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.requestID = ""
}
