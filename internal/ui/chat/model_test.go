// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/jeranaias/spendtalk-tui/internal/config"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
)

func newReadyModel() *Model {
	m := New(config.Default())
	m.machine = dialog.NewMachine(dialog.Options{})
	m.state = StateReady
	return m
}

func TestSyncRevealsUserEntriesInstant(t *testing.T) {
	m := newReadyModel()
	m.machine.SubmitUserText("我上個月花多少？")

	m.syncReveals()

	user := m.machine.Entries()[0]
	if !m.typewriter.Done(user.Key) {
		t.Error("user entry should reveal instantly")
	}
	if !m.machine.TypingDone(user.Key) {
		t.Error("user entry typing flag not set")
	}
}

func TestSyncRevealsSystemEntriesAnimate(t *testing.T) {
	m := newReadyModel()
	m.machine.AppendGreeting("")

	cmd := m.syncReveals()
	if cmd == nil {
		t.Fatal("no reveal command for the greeting")
	}
	greeting := m.machine.Entries()[0]
	if m.typewriter.Done(greeting.Key) {
		t.Error("system entry revealed without animation")
	}

	// A second sync must not restart the reveal.
	if m.syncReveals() != nil {
		t.Error("reveal restarted for an already tracked entry")
	}
}

func TestRefreshState(t *testing.T) {
	m := newReadyModel()

	m.machine.SubmitUserText("問題")
	m.refreshState()
	if m.state != StateAwaiting {
		t.Errorf("state = %v, want StateAwaiting", m.state)
	}

	m.machine.SimulateFrontendError()
	m.refreshState()
	if m.state != StateFatal {
		t.Errorf("state = %v, want StateFatal", m.state)
	}

	m.machine.Retry()
	m.machine.ResetConversation()
	m.refreshState()
	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
}

func TestLatestQuestionID(t *testing.T) {
	m := newReadyModel()
	if got := m.latestQuestionID(); got != "" {
		t.Errorf("empty transcript question id = %q", got)
	}

	m.machine.AppendGreeting("")
	if got := m.latestQuestionID(); got != "" {
		t.Errorf("greeting has a question id: %q", got)
	}

	m.machine.ShowIntroduction()
	if got := m.latestQuestionID(); got == "" {
		t.Error("introduction turn has no question id")
	}
}

func TestCycleRecommendation(t *testing.T) {
	m := New(config.Default())
	m.machine = dialog.NewMachine(dialog.Options{
		Suggested: []dialog.Recommendation{
			{DisplayText: "問題一"},
			{DisplayText: "問題二"},
		},
	})
	m.machine.ShowIntroduction()
	for _, e := range m.machine.Entries() {
		m.machine.SetTypingComplete(e.Key)
	}

	m.cycleRecommendation(1)
	if m.recIndex != 0 {
		t.Errorf("recIndex = %d, want 0", m.recIndex)
	}
	m.cycleRecommendation(1)
	m.cycleRecommendation(1)
	if m.recIndex != 0 {
		t.Errorf("recIndex after wrap = %d, want 0", m.recIndex)
	}
	m.cycleRecommendation(-1)
	if m.recIndex != 1 {
		t.Errorf("recIndex after reverse wrap = %d, want 1", m.recIndex)
	}

	rec, ok := m.selectedRecommendation()
	if !ok || rec.DisplayText != "問題二" {
		t.Errorf("selected = %+v, ok=%v", rec, ok)
	}
}
