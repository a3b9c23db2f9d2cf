// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// MESSAGE STYLES
// =============================================================================

// UserMessage styles a user turn.
var UserMessage = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(TealDeep).
	Padding(0, 1)

// SystemMessage styles an assistant turn.
var SystemMessage = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Padding(0, 1)

// ErrorMessage styles an inline rejection turn.
var ErrorMessage = lipgloss.NewStyle().
	Foreground(Amber).
	Padding(0, 1)

// FatalMessage styles overlay error text.
var FatalMessage = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true).
	Padding(1, 2)

// RoleLabel styles the speaker tag in front of a turn.
var RoleLabel = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Bold(true)

// =============================================================================
// PANEL STYLES
// =============================================================================

// PanelTitle styles the recommended-questions panel header.
var PanelTitle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Bold(true)

// Recommendation styles one clickable follow-up question.
var Recommendation = lipgloss.NewStyle().
	Foreground(Cyan).
	PaddingLeft(2)

// RecommendationSelected styles the focused follow-up question.
var RecommendationSelected = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(TealDeep).
	PaddingLeft(2)

// Affordance styles inline action hints (feedback, go-to, notice).
var Affordance = lipgloss.NewStyle().
	Foreground(TextMuted).
	PaddingLeft(2)

// InputBox styles the prompt area.
var InputBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxDisabled styles the prompt when input is locked.
var InputBoxDisabled = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Foreground(TextMuted).
	Padding(0, 1)

// StatusBar styles the footer line.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextMuted)

// Toast styles the transient acknowledgement box.
var Toast = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(TealDeep).
	Padding(0, 1).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Teal)
