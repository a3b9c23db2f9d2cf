// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Typewriter reveals system messages character by character. Progress
// is tracked per entry key; a key whose reveal finished reports done
// forever after, so controls gated on completion stay stable.
type Typewriter struct {
	interval time.Duration
	progress map[string]int
	done     map[string]bool
}

// NewTypewriter creates a typewriter with the given per-rune interval.
func NewTypewriter(interval time.Duration) *Typewriter {
	if interval <= 0 {
		interval = 15 * time.Millisecond
	}
	return &Typewriter{
		interval: interval,
		progress: make(map[string]int),
		done:     make(map[string]bool),
	}
}

// TypingTickMsg advances one entry's reveal.
type TypingTickMsg struct {
	Key string
}

// TypingDoneMsg reports that an entry's reveal finished.
type TypingDoneMsg struct {
	Key string
}

// CardRevealMsg reports that an entry's consumption card may show.
type CardRevealMsg struct {
	Key string
}

// Start begins revealing the entry and returns the first tick.
func (tw *Typewriter) Start(key string) tea.Cmd {
	tw.progress[key] = 0
	return tw.tick(key)
}

// StartRevealed marks an entry fully revealed immediately. User turns
// and restored transcripts skip the animation.
func (tw *Typewriter) StartRevealed(key string) {
	tw.done[key] = true
}

// Advance reveals one more rune of the entry. It returns the next tick,
// or a TypingDoneMsg command once the text is exhausted.
func (tw *Typewriter) Advance(key, text string) tea.Cmd {
	if tw.done[key] {
		return nil
	}
	total := len([]rune(text))
	tw.progress[key]++
	if tw.progress[key] >= total {
		tw.done[key] = true
		return func() tea.Msg { return TypingDoneMsg{Key: key} }
	}
	return tw.tick(key)
}

func (tw *Typewriter) tick(key string) tea.Cmd {
	return tea.Tick(tw.interval, func(time.Time) tea.Msg {
		return TypingTickMsg{Key: key}
	})
}

// Visible returns the currently revealed prefix of the text.
func (tw *Typewriter) Visible(key, text string) string {
	if tw.done[key] {
		return text
	}
	runes := []rune(text)
	n := tw.progress[key]
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

// Done reports whether the entry's reveal finished.
func (tw *Typewriter) Done(key string) bool {
	return tw.done[key]
}

// Skip finishes every in-flight reveal at once.
func (tw *Typewriter) Skip() {
	for key := range tw.progress {
		tw.done[key] = true
	}
}

// Reset forgets all reveal state, for a new conversation.
func (tw *Typewriter) Reset() {
	tw.progress = make(map[string]int)
	tw.done = make(map[string]bool)
}

// CardRevealCmd schedules the consumption-card reveal that follows a
// finished text reveal.
func CardRevealCmd(key string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return CardRevealMsg{Key: key}
	})
}
