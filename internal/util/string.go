// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides string helpers for the spendtalk application.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Transcript text is almost entirely CJK, so every display measurement
// here goes through go-runewidth rather than counting runes.

// TruncateWidth truncates a string to a maximum display width,
// appending an ellipsis when anything was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// WrapWidth wraps text to the given display width, preserving existing
// line breaks. CJK text has no word boundaries to respect, so wrapping
// is per-character by width.
func WrapWidth(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{s}
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, wrapLine(line, maxWidth)...)
	}
	return out
}

func wrapLine(line string, maxWidth int) []string {
	if runewidth.StringWidth(line) <= maxWidth {
		return []string{line}
	}
	var (
		out     []string
		current strings.Builder
		width   int
	)
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth {
			out = append(out, current.String())
			current.Reset()
			width = 0
		}
		current.WriteRune(r)
		width += w
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// PadWidth pads a string with spaces to an exact display width,
// truncating when it is too wide.
func PadWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current > width {
		return TruncateWidth(s, width)
	}
	return s + strings.Repeat(" ", width-current)
}

// DisplayWidth returns the terminal column width of a string.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}
