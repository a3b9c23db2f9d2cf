// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/jeranaias/spendtalk-tui/internal/dialog"
	"github.com/jeranaias/spendtalk-tui/internal/ui/styles"
	"github.com/jeranaias/spendtalk-tui/internal/util"
)

// inputAreaHeight is the rows reserved below the transcript viewport.
const inputAreaHeight = 5

// Overlay texts shown in place of the transcript.
const (
	idleOverlayText     = "您的操作已逾時，請重新開啟以繼續使用。"
	frontendOverlayText = "前端加載失敗，請重新整理頁面。"
)

// View renders the whole conversation screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == StateBooting {
		return fmt.Sprintf("\n  %s 連線中…\n", m.spinner.View())
	}
	if m.state == StateFatal {
		return m.renderOverlay()
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.dislikeOpen {
		b.WriteString(m.renderDislikePanel())
	} else {
		b.WriteString(m.renderInputArea())
	}

	if toast := m.toasts.Render(); toast != "" {
		b.WriteString("\n")
		b.WriteString(toast)
	}
	return b.String()
}

// renderOverlay draws a fatal full-screen error in place of the
// transcript.
func (m *Model) renderOverlay() string {
	text := frontendOverlayText
	if m.machine != nil && m.machine.IdleTimeoutVisible() {
		text = idleOverlayText
	}
	hint := styles.StatusBar.Render("esc 重試 · ctrl+c 離開")
	return "\n" + styles.FatalMessage.Render(text) + "\n\n  " + hint + "\n"
}

func (m *Model) renderInputArea() string {
	var b strings.Builder
	if m.machine != nil && m.machine.InputDisabled() {
		b.WriteString(styles.InputBoxDisabled.Render("輸入已停用"))
	} else {
		b.WriteString(styles.InputBox.Render(m.input.View()))
	}
	b.WriteString("\n")

	status := "enter 送出 · tab 選推薦問題 · ctrl+g 讚 · ctrl+d 倒讚 · ctrl+n 新對話"
	if m.state == StateAwaiting {
		status = m.spinner.View() + " 回覆產生中…"
	}
	b.WriteString(styles.StatusBar.Render(status))
	return b.String()
}

func (m *Model) renderDislikePanel() string {
	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("想告訴我們原因嗎？"))
	b.WriteString("\n")
	for i, opt := range m.dislikeOptions {
		style := styles.Recommendation
		if i == m.dislikeIndex {
			style = styles.RecommendationSelected
		}
		b.WriteString(style.Render(opt))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusBar.Render("enter 送出 · esc 略過"))
	return b.String()
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// syncViewport re-renders the transcript into the viewport and keeps
// the latest turn in view.
func (m *Model) syncViewport() {
	if m.machine == nil {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	entries := m.machine.Entries()
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	if m.boot != nil && m.boot.HeaderDescription != "" {
		for _, line := range util.WrapWidth(m.boot.HeaderDescription, width-4) {
			b.WriteString(styles.StatusBar.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	for i, e := range entries {
		if i > 0 && !m.cfg.UI.CompactMode {
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(e, i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderEntry(e dialog.Entry, index, width int) string {
	var b strings.Builder

	if e.Role == dialog.RoleUser {
		b.WriteString(styles.RoleLabel.Render("您"))
		b.WriteString(" ")
		b.WriteString(styles.UserMessage.Render(e.Text))
		return b.String()
	}

	text := m.typewriter.Visible(e.Key, e.Text)
	style := styles.SystemMessage
	if e.ErrorKind != dialog.KindNone {
		style = styles.ErrorMessage
	}

	b.WriteString(styles.RoleLabel.Render("助理"))
	b.WriteString("\n")
	for _, line := range util.WrapWidth(text, width-4) {
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	vis := m.machine.Visibility(index)
	if hints := m.renderAffordances(e, vis); hints != "" {
		b.WriteString(hints)
	}
	if vis.ShowRecommendations {
		b.WriteString(m.renderRecommendations(e, index))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderAffordances(e dialog.Entry, vis dialog.Visibility) string {
	var hints []string
	if vis.ShowFeedback {
		hints = append(hints, "👍 ctrl+g", "👎 ctrl+d")
	}
	if vis.ShowGoTo {
		target := e.DeepLink
		if target == "" {
			target = m.cfg.Chat.GoToURL
		}
		hints = append(hints, "前往 → "+target)
	}
	if vis.ShowNotice && m.boot != nil {
		hints = append(hints, m.boot.NoticeLabel+" → /notice")
	}
	if len(hints) == 0 {
		return ""
	}
	return styles.Affordance.Render(strings.Join(hints, "  ")) + "\n"
}

func (m *Model) renderRecommendations(e dialog.Entry, index int) string {
	var b strings.Builder
	title := e.QuestionTitle
	if title == "" {
		title = dialog.TitleSuggested
	}
	b.WriteString(styles.PanelTitle.Render(title))
	b.WriteString("\n")

	// Selection only applies to the newest panel on screen.
	latest := m.latestRecommendations()
	isLatest := len(latest) == len(e.Recommendations) && len(latest) > 0 &&
		latest[0] == e.Recommendations[0]

	for i, rec := range e.Recommendations {
		style := styles.Recommendation
		if isLatest && i == m.recIndex {
			style = styles.RecommendationSelected
		}
		b.WriteString(style.Render("· " + rec.DisplayText))
		b.WriteString("\n")
	}
	return b.String()
}
