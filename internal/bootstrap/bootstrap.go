// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap runs the startup flow: profile lookup, session
// initialization, and the derivations the conversation needs before
// the first turn (greeting, legal notice, introduction text,
// suggestion list, quota pre-emption).
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/spendtalk-tui/internal/api"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
)

// Notice defaults when the backend omits its own.
const (
	DefaultNoticeLabel = "注意事項"

	// noticeLabelMarker finds the notice binding among the legal-notice
	// placeholders.
	noticeLabelMarker = "事項"
)

// Result carries everything the conversation layer needs at startup.
type Result struct {
	Session *api.Session

	Greeting string

	// HeaderDescription is the legal-notice template with its {0}/{1}
	// placeholders replaced by the bound labels.
	HeaderDescription string

	// NoticeLabel and NoticeContent back the introduction entry's
	// notice action.
	NoticeLabel   string
	NoticeContent string
	NoticeLink    string

	// IntroductionText is the pre-canned how-to-use answer, when the
	// backend supplied one among the suggestions.
	IntroductionText string

	// Suggested is the initial suggestion list with the introduction
	// entry filtered out.
	Suggested []dialog.Recommendation

	// QuotaExhausted means the daily limit was already spent before
	// the first turn; the conversation opens in the locked state.
	QuotaExhausted bool

	RequestLimitAmount int
	UsedAmount         int
}

// Run executes the startup flow. Any failure, including an empty
// customer id, is returned as an error; the caller raises the
// load-failure overlay.
func Run(ctx context.Context, client *api.Client, entryCode string) (*Result, error) {
	profile, err := client.Profile(ctx, entryCode)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if strings.TrimSpace(profile.CustomerID) == "" {
		return nil, fmt.Errorf("profile: empty customer id")
	}

	init, err := client.Initialize(ctx, profile.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	log.Printf("Session initialized: quota %d/%d", init.UsedAmount, init.RequestLimitAmount)

	session := api.NewSession()
	session.Start(init.SessionID)

	res := &Result{
		Session:            session,
		Greeting:           init.GreetContent,
		HeaderDescription:  renderHeader(init.HeaderDescription, init.URLObjects),
		NoticeLabel:        DefaultNoticeLabel,
		RequestLimitAmount: init.RequestLimitAmount,
		UsedAmount:         init.UsedAmount,
		QuotaExhausted:     init.RequestLimitAmount > 0 && init.UsedAmount >= init.RequestLimitAmount,
	}

	if notice := findNotice(init.URLObjects); notice != nil {
		if notice.URLText != "" {
			res.NoticeLabel = notice.URLText
		}
		res.NoticeContent = notice.URLContent
		res.NoticeLink = notice.URLLink
	}

	res.IntroductionText, res.Suggested = splitIntroduction(init.QuestionSuggest)
	return res, nil
}

// renderHeader substitutes the {0} and {1} placeholder slots with their
// bound labels. With fewer than two bindings the template is returned
// untouched, matching the backend contract.
func renderHeader(template string, objects []api.URLObject) string {
	if template == "" || len(objects) < 2 {
		return template
	}
	out := strings.ReplaceAll(template, "{0}", objects[0].URLText)
	return strings.ReplaceAll(out, "{1}", objects[1].URLText)
}

// findNotice locates the legal-notice binding by its label marker.
func findNotice(objects []api.URLObject) *api.URLObject {
	for i := range objects {
		if strings.Contains(objects[i].URLText, noticeLabelMarker) {
			return &objects[i]
		}
	}
	return nil
}

// splitIntroduction extracts the how-to-use entry from the suggestion
// list. Its pre-canned text becomes the introduction; everything else
// stays a clickable suggestion.
func splitIntroduction(suggestions []api.QuestionSuggest) (string, []dialog.Recommendation) {
	var intro string
	recs := make([]dialog.Recommendation, 0, len(suggestions))
	for _, q := range suggestions {
		if strings.Contains(q.QuestionContent, dialog.IntroductionMarker) {
			if q.QuestionText != "" {
				intro = q.QuestionText
			}
			continue
		}
		recs = append(recs, dialog.Recommendation{
			DisplayText: q.QuestionContent,
			Prefilled:   q.QuestionText,
		})
	}
	if len(recs) == 0 {
		recs = nil
	}
	return intro, recs
}
