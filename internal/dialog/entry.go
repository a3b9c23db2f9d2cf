// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dialog owns the conversation transcript for the
// consumption-analysis assistant: an ordered sequence of entries,
// a single loading flag, overlay error states, and the per-entry
// reveal bookkeeping the presentation rules depend on.
//
// Commands on the Machine mutate state synchronously and return a list
// of Effects describing the asynchronous work the caller must perform
// (backend calls, delayed appends, toasts). Keeping the timers and the
// network outside the Machine makes every transition testable without
// a clock.
package dialog

import (
	"github.com/google/uuid"

	"github.com/jeranaias/spendtalk-tui/internal/api"
)

// =============================================================================
// ROLES AND ERROR KINDS
// =============================================================================

// Role identifies which side of the conversation an entry belongs to.
type Role int

const (
	RoleUser Role = iota
	RoleSystem
)

// String returns a human-readable role name.
func (r Role) String() string {
	if r == RoleUser {
		return "user"
	}
	return "system"
}

// ErrorKind tags a System entry with the rejection category it renders.
// The zero value means the entry is a normal answer.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindSystem             ErrorKind = "system"
	KindBusinessKeyword    ErrorKind = "businessKeyword"
	KindSensitiveData      ErrorKind = "sensitiveData"
	KindKeyword            ErrorKind = "keyword"
	KindTopicContent       ErrorKind = "topicContent"
	KindTokenLimit         ErrorKind = "tokenLimit"
	KindIdleTimeout        ErrorKind = "idleTimeout"
	KindStoreLimit         ErrorKind = "storeLimit"
	KindMultipleCategories ErrorKind = "multipleCategories"
	KindLowSimilarity      ErrorKind = "lowSimilarity"
	KindFrontendError      ErrorKind = "frontendError"
)

// kindForCode maps a backend rejection code onto the transcript tag.
func kindForCode(code api.Code) ErrorKind {
	switch code {
	case api.CodeSystem:
		return KindSystem
	case api.CodeBusinessKeyword:
		return KindBusinessKeyword
	case api.CodeSensitiveData:
		return KindSensitiveData
	case api.CodeKeyword:
		return KindKeyword
	case api.CodeTopicContent:
		return KindTopicContent
	case api.CodeTokenLimit:
		return KindTokenLimit
	case api.CodeIdleTimeout:
		return KindIdleTimeout
	case api.CodeStoreLimit:
		return KindStoreLimit
	case api.CodeMultipleCategories:
		return KindMultipleCategories
	case api.CodeLowSimilarity:
		return KindLowSimilarity
	}
	return KindSystem
}

// ContentPolicy reports whether the kind is a content-policy rejection.
// These keep a minimal feedback affordance and stay conversational.
func (k ErrorKind) ContentPolicy() bool {
	switch k {
	case KindSensitiveData, KindKeyword, KindBusinessKeyword,
		KindTopicContent, KindLowSimilarity:
		return true
	}
	return false
}

// =============================================================================
// TRI-STATE FEEDBACK FLAG
// =============================================================================

// TriState is an explicit three-valued flag. Unset means "no opinion":
// the presentation rules fall back to their defaults.
type TriState int

const (
	Unset TriState = iota
	True
	False
)

// =============================================================================
// TRANSCRIPT ENTRY
// =============================================================================

// Recommendation is one follow-up question offered under an answer.
// Prefilled, when non-empty, is a pre-canned answer rendered without a
// backend round trip.
type Recommendation struct {
	DisplayText string
	Prefilled   string
}

// Entry is one turn in the transcript.
//
// Key identifies the entry for reveal bookkeeping. QuestionID is shared
// between a User entry and the System entries answering it, and is the
// unit stale timers are validated against. RequestID arrives later, by
// patch, once the backend has answered.
type Entry struct {
	Key            string
	Role           Role
	Text           string
	QuestionID     string
	RequestID      string
	ErrorKind      ErrorKind
	ShowGoToAction bool
	DeepLink       string
	WithFeedback   TriState
	IsIntroduction bool
	HasCard        bool

	Recommendations []Recommendation
	QuestionTitle   string

	FeedbackOptions []string
	FeedbackDetail  *api.FeedbackResponse
}

// newEntry creates an entry with a fresh key.
func newEntry(role Role, text, questionID string) Entry {
	return Entry{
		Key:        uuid.NewString(),
		Role:       role,
		Text:       text,
		QuestionID: questionID,
	}
}

// newQuestionID returns a fresh correlation id for a user turn.
func newQuestionID() string {
	return uuid.NewString()
}
