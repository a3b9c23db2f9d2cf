// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

// Visibility is the presentation decision for one transcript entry.
type Visibility struct {
	ShowFeedback        bool
	ShowGoTo            bool
	ShowRecommendations bool

	// ShowNotice replaces the go-to action on introduction entries.
	ShowNotice bool
}

// ComputeVisibility decides which affordances an entry may render.
// It is pure: same arguments, same answer, no mutation.
//
// Nothing appears before the entry's text reveal finishes; entries
// carrying a consumption card wait for the card reveal instead.
// The rules apply in priority order: introduction, quota notice,
// content-policy rejection, system failure, then the default.
func ComputeVisibility(entry Entry, index int, transcript []Entry, typingDone, cardShown map[string]bool) Visibility {
	revealed := typingDone[entry.Key]
	if entry.HasCard {
		revealed = cardShown[entry.Key]
	}
	if !revealed {
		return Visibility{}
	}

	feedbackAllowed := entry.WithFeedback != False

	switch {
	case entry.IsIntroduction:
		return Visibility{
			ShowNotice:          true,
			ShowRecommendations: len(entry.Recommendations) > 0,
		}

	case entry.ErrorKind == KindTokenLimit:
		return Visibility{ShowGoTo: true}

	case entry.ErrorKind.ContentPolicy():
		return Visibility{
			ShowFeedback:        feedbackAllowed,
			ShowRecommendations: len(entry.Recommendations) > 0 && inLatestExchange(index, transcript),
		}

	case entry.ErrorKind == KindSystem:
		return Visibility{}
	}

	return Visibility{
		ShowFeedback:        feedbackAllowed,
		ShowGoTo:            entry.ShowGoToAction || entry.DeepLink != "",
		ShowRecommendations: len(entry.Recommendations) > 0 && inLatestExchange(index, transcript),
	}
}

// inLatestExchange reports whether the entry at index belongs to the
// most recent user/system exchange: strictly after the last User entry,
// or anywhere in a transcript of at most two entries.
func inLatestExchange(index int, transcript []Entry) bool {
	if len(transcript) <= 2 {
		return true
	}
	last := -1
	for i := range transcript {
		if transcript[i].Role == RoleUser {
			last = i
		}
	}
	return index > last
}
