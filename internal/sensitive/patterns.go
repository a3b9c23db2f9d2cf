// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sensitive screens user input for personal data before it
// leaves the client. Matching anything here short-circuits the chat
// call entirely; the text is never sent to the backend.
package sensitive

import (
	"regexp"

	"golang.org/x/text/width"
)

// =============================================================================
// PATTERNS
// =============================================================================

// Patterns for Taiwanese personal identifiers. Digits may be broken up
// by spaces or common separators, so most patterns tolerate
// [\s\-_.,] runs between characters.
var patterns = []*regexp.Regexp{
	// National ID: one letter followed by 8-9 digits.
	regexp.MustCompile(`[A-Za-z]([\s\-_.,]*)\d([\s\-_.,]*\d){8,9}`),

	// Bank account / health insurance / credit card: 12+ digits with
	// optional separators.
	regexp.MustCompile(`(\d[\s\-_.,]*){12}`),

	// Mobile number: 09 followed by 8 digits.
	regexp.MustCompile(`^09\d{8}$`),

	// Residence permit / passport: 1-2 letters then 6-9 digits.
	regexp.MustCompile(`[A-Za-z]{1,2}[\s\-_.,]*[0-9]{6,9}`),

	// Email address.
	regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`),

	// Landline: 2-3 digit area code, optionally parenthesized, then
	// 6-8 digits.
	regexp.MustCompile(`^(?:(?:\(0[2-8]\)|0[2-8])(?:[\s\-_])?\d{6,8}|(?:\(037\)|037|(?:\(049\)|049)|(?:\(082\)|082)|(?:\(0826\)|0826)|(?:\(0836\)|0836)|(?:\(089\)|089))(?:[\s\-_])?\d{6,8})$`),

	// IPv4 address.
	regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`),
}

// ContainsSensitiveData reports whether text looks like it carries a
// personal identifier. Full-width digits and letters are folded to
// their half-width forms first so ０９１２３４５６７８ is caught the
// same as 0912345678.
func ContainsSensitiveData(text string) bool {
	if text == "" {
		return false
	}
	folded := width.Narrow.String(text)
	for _, p := range patterns {
		if p.MatchString(folded) {
			return true
		}
	}
	return false
}
