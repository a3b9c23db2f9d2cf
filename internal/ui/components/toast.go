// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the spendtalk TUI.
//
// This file implements non-blocking toasts. Toasts appear above the
// input area and auto-dismiss; they never block interaction.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/spendtalk-tui/internal/dialog"
	"github.com/jeranaias/spendtalk-tui/internal/ui/styles"
)

// Toast is one transient acknowledgement.
type Toast struct {
	ID        int
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager manages the active toast stack. Safe for concurrent use
// so background completions can post acknowledgements directly.
type ToastManager struct {
	toasts    []Toast
	nextID    int
	maxToasts int
	mutex     sync.Mutex
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 3}
}

// Add posts a toast with the standard duration and returns its id.
func (m *ToastManager) Add(message string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := Toast{
		ID:        m.nextID,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  dialog.ToastDuration,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// Tick drops expired toasts and returns the remaining ones.
func (m *ToastManager) Tick() []Toast {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired() {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// HasToasts reports whether anything is showing.
func (m *ToastManager) HasToasts() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.toasts = nil
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct{}

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ToastTickMsg{}
	})
}

// Render draws the toast stack, newest first.
func (m *ToastManager) Render() string {
	toasts := m.Tick()
	if len(toasts) == 0 {
		return ""
	}
	out := ""
	for i, t := range toasts {
		if i > 0 {
			out += "\n"
		}
		out += styles.Toast.Render(t.Message)
	}
	return out
}
