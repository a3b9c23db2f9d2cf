// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP gateway to the consumption-analysis backend.
//
// The backend exposes five endpoints: profile, initialize, chat, feedback
// and comment. This package normalizes their wire shapes, maps response
// codes to user-facing text, and tracks the per-page session identity
// (session id + most recent request id) in an explicit Session value
// instead of package globals.
package api

// =============================================================================
// REQUEST / RESPONSE SHAPES
// =============================================================================

// QuestionSuggest is a suggested or related follow-up question.
//
// QuestionContent is the text shown to the user. QuestionText, when
// non-empty, is a pre-canned answer: selecting the suggestion renders
// that text directly and skips the chat call entirely.
type QuestionSuggest struct {
	QuestionContent string `json:"questionContent"`
	QuestionText    string `json:"questionText"`
}

// URLObject is one placeholder binding for the templated legal notice.
// The header description contains up to two slots ({0} and {1}); each
// binds to either an external link (UrlLink) or inline content
// (UrlContent) under a display label (UrlText).
type URLObject struct {
	URLText    string `json:"urlText"`
	URLLink    string `json:"urlLink,omitempty"`
	URLContent string `json:"urlContent,omitempty"`
}

// ProfileResponse is the result of the profile lookup.
type ProfileResponse struct {
	CustomerID string `json:"customerId"`
}

// InitializeResponse is the result of session initialization.
type InitializeResponse struct {
	SessionID          string            `json:"sessionId"`
	RequestLimitAmount int               `json:"requestLimitAmount"`
	UsedAmount         int               `json:"usedAmount"`
	ReturnCode         string            `json:"returnCode"`
	ReturnDesc         string            `json:"returnDesc"`
	GreetContent       string            `json:"greetContent"`
	HeaderDescription  string            `json:"headerDescription"`
	URLObjects         []URLObject       `json:"urlObject,omitempty"`
	QuestionSuggest    []QuestionSuggest `json:"questionSuggest,omitempty"`
}

// ResponseMessageObject carries the generated answer of a chat turn.
// ErrorMessage, when non-empty, takes display precedence over GenText.
type ResponseMessageObject struct {
	GenText         string            `json:"genText"`
	ErrorMessage    string            `json:"errorMessage,omitempty"`
	Deeplink        string            `json:"deeplink,omitempty"`
	QuestionSuggest []QuestionSuggest `json:"questionSuggest,omitempty"`
	SimilarQuestion []QuestionSuggest `json:"similarQuestion,omitempty"`
}

// ChatResponse is the normalized result of a chat turn.
//
// RequestLimitAmount and UsedAmount are pointers because the backend
// omits them on some paths; quota exhaustion is only detected when both
// are present and equal.
type ChatResponse struct {
	Code                  Code                   `json:"code"`
	Message               string                 `json:"message"`
	RequestID             string                 `json:"requestId,omitempty"`
	ResponseMessageObject *ResponseMessageObject `json:"responseMessageObject,omitempty"`
	RequestLimitAmount    *int                   `json:"requestLimitAmount,omitempty"`
	UsedAmount            *int                   `json:"usedAmount,omitempty"`
}

// QuotaExhausted reports whether this response consumed the last
// available request of the day.
func (r *ChatResponse) QuotaExhausted() bool {
	return r.RequestLimitAmount != nil && r.UsedAmount != nil &&
		*r.RequestLimitAmount == *r.UsedAmount
}

// DisplayText returns the text to render for this turn, preferring the
// error message over the generated text when both exist.
func (r *ChatResponse) DisplayText() string {
	if r.ResponseMessageObject == nil {
		return ""
	}
	if r.ResponseMessageObject.ErrorMessage != "" {
		return r.ResponseMessageObject.ErrorMessage
	}
	return r.ResponseMessageObject.GenText
}

// FeedbackOption is one selectable dislike reason.
//
// The backend spells the content field "optionCentent" on the wire; the
// misspelling is load-bearing and must not be corrected here.
type FeedbackOption struct {
	OptionID      string `json:"optionId"`
	OptionContent string `json:"optionCentent"`
}

// FeedbackResponse is the per-turn dislike-reason catalogue.
type FeedbackResponse struct {
	Code            string           `json:"code"`
	Message         string           `json:"message"`
	FeedbackComment []FeedbackOption `json:"feedbackComment,omitempty"`
}

// OptionIDFor resolves a displayed reason back to its backend option id.
// Returns the empty string when the reason is not in the catalogue.
func (r *FeedbackResponse) OptionIDFor(content string) string {
	if r == nil {
		return ""
	}
	for _, opt := range r.FeedbackComment {
		if opt.OptionContent == content {
			return opt.OptionID
		}
	}
	return ""
}

// Options returns the display texts of all dislike reasons, in order.
func (r *FeedbackResponse) Options() []string {
	if r == nil || len(r.FeedbackComment) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.FeedbackComment))
	for _, opt := range r.FeedbackComment {
		out = append(out, opt.OptionContent)
	}
	return out
}

// CommentResponse is the acknowledgement of a comment submission.
type CommentResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// INTERNAL WIRE BODIES
// =============================================================================

type profileRequest struct {
	Code string `json:"code"`
}

type initializeRequest struct {
	CustomerID    string `json:"customerId"`
	Device        string `json:"device"`
	DeviceVersion string `json:"deviceVersion"`
}

type chatRequest struct {
	SessionID         string  `json:"sessionId"`
	Message           string  `json:"message"`
	IsDefault         bool    `json:"isDefault"`
	TID               *string `json:"tid"`
	QuestionCondition *string `json:"questionCondition"`
}

type feedbackRequest struct {
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId"`
	Evaluate  bool   `json:"evaluate"`
}

type commentRequest struct {
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId"`
	OptionID  string `json:"optionId"`
	// Backend field name is misspelled on the wire.
	OptionContent string `json:"optionCentent"`
}
