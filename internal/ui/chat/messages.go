// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/spendtalk-tui/internal/api"
	"github.com/jeranaias/spendtalk-tui/internal/bootstrap"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// bootstrapDoneMsg carries the startup flow result.
type bootstrapDoneMsg struct {
	res *bootstrap.Result
	err error
}

// chatResultMsg carries a chat turn's outcome.
type chatResultMsg struct {
	questionID string
	resp       *api.ChatResponse
	err        error
}

// delayedAppendMsg fires when a scheduled append's delay elapsed.
type delayedAppendMsg struct {
	eff dialog.DelayedAppend
}

// feedbackOptionsMsg carries the dislike-reason catalogue for a turn.
type feedbackOptionsMsg struct {
	questionID string
	requestID  string
	detail     *api.FeedbackResponse
	err        error
}

// commentResultMsg carries a verdict submission's outcome.
type commentResultMsg struct {
	err error
}
