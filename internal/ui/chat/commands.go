// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/spendtalk-tui/internal/api"
	"github.com/jeranaias/spendtalk-tui/internal/bootstrap"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

func bootstrapCmd(client *api.Client, entryCode string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := bootstrap.Run(ctx, client, entryCode)
		return bootstrapDoneMsg{res: res, err: err}
	}
}

func chatCmd(client *api.Client, sess *api.Session, questionID, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.Chat(ctx, sess, text)
		return chatResultMsg{questionID: questionID, resp: resp, err: err}
	}
}

func fetchFeedbackCmd(client *api.Client, sess *api.Session, eff dialog.FetchFeedback, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		detail, err := client.Feedback(ctx, sess, eff.RequestID)
		return feedbackOptionsMsg{
			questionID: eff.QuestionID,
			requestID:  eff.RequestID,
			detail:     detail,
			err:        err,
		}
	}
}

func sendCommentCmd(client *api.Client, sess *api.Session, eff dialog.SendComment, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var err error
		if eff.Positive {
			err = client.Like(ctx, sess, eff.RequestID)
		} else {
			err = client.Dislike(ctx, sess, eff.RequestID, eff.OptionID, eff.Content)
		}
		return commentResultMsg{err: err}
	}
}

func delayedAppendCmd(eff dialog.DelayedAppend) tea.Cmd {
	return tea.Tick(eff.Delay, func(time.Time) tea.Msg {
		return delayedAppendMsg{eff: eff}
	})
}

// execEffects translates machine effects into Bubble Tea commands.
func (m *Model) execEffects(effs []dialog.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effs {
		switch e := eff.(type) {
		case dialog.CallChat:
			cmds = append(cmds, chatCmd(m.client, m.session, e.QuestionID, e.Text, m.timeout))
		case dialog.DelayedAppend:
			cmds = append(cmds, delayedAppendCmd(e))
		case dialog.FetchFeedback:
			cmds = append(cmds, fetchFeedbackCmd(m.client, m.session, e, m.timeout))
		case dialog.SendComment:
			cmds = append(cmds, sendCommentCmd(m.client, m.session, e, m.timeout))
		case dialog.ShowToast:
			m.toasts.Add(e.Text)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}
