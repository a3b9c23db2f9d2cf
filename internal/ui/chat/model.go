// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the spendtalk TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/spendtalk-tui/internal/api"
	"github.com/jeranaias/spendtalk-tui/internal/bootstrap"
	"github.com/jeranaias/spendtalk-tui/internal/config"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
	"github.com/jeranaias/spendtalk-tui/internal/sensitive"
	"github.com/jeranaias/spendtalk-tui/internal/ui/components"
	"github.com/jeranaias/spendtalk-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the conversation view.
type State int

const (
	StateBooting State = iota // Startup flow in progress
	StateReady                // Ready for input
	StateAwaiting             // Chat request outstanding
	StateFatal                // Overlay error active
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	state State

	// Dimensions
	width  int
	height int

	// Conversation
	machine *dialog.Machine
	boot    *bootstrap.Result

	// Backend
	client  *api.Client
	session *api.Session
	timeout time.Duration

	// Config snapshot
	cfg *config.Config

	// UI components
	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	typewriter *components.Typewriter
	toasts     *components.ToastManager

	// Per-entry bookkeeping: keys whose reveal has been started.
	tracked map[string]bool

	// Recommendation selection within the latest entry. -1 = none.
	recIndex int

	// Dislike-reason panel.
	dislikeOpen    bool
	dislikeOptions []string
	dislikeIndex   int
	dislikeTarget  string

	// Fatal boot error detail for the overlay.
	bootErr error

	quitting bool
}

// New creates the conversation view and kicks off the startup flow on
// Init.
func New(cfg *config.Config) *Model {
	input := textinput.New()
	input.Placeholder = "輸入您的問題…"
	input.CharLimit = 200
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Teal)

	vp := viewport.New(80, 20)

	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.Timeout()).
		WithDevice(cfg.API.Device, cfg.API.DeviceVersion)

	return &Model{
		state:      StateBooting,
		client:     client,
		timeout:    cfg.Timeout(),
		cfg:        cfg,
		viewport:   vp,
		input:      input,
		spinner:    sp,
		typewriter: components.NewTypewriter(time.Duration(cfg.UI.TypingIntervalMs) * time.Millisecond),
		toasts:     components.NewToastManager(),
		tracked:    make(map[string]bool),
		recIndex:   -1,
	}
}

// Init starts the spinner and the startup flow.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		bootstrapCmd(m.client, m.cfg.API.EntryCode, m.timeout),
		components.ToastTickCmd(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case bootstrapDoneMsg:
		return m.handleBootstrap(msg)
	case chatResultMsg:
		return m.handleChatResult(msg)
	case delayedAppendMsg:
		m.machine.CommitDelayedAppend(msg.eff)
		m.refreshState()
		return m, m.syncReveals()
	case feedbackOptionsMsg:
		return m.handleFeedbackOptions(msg)
	case commentResultMsg:
		return m, m.execEffects(m.machine.OnCommentResult(msg.err))
	case components.TypingTickMsg:
		return m.handleTypingTick(msg)
	case components.TypingDoneMsg:
		return m.handleTypingDone(msg)
	case components.CardRevealMsg:
		m.machine.SetCardRevealed(msg.Key)
		m.syncViewport()
		return m, nil
	case components.ToastTickMsg:
		return m, components.ToastTickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.viewport.Width = msg.Width
	m.viewport.Height = msg.Height - inputAreaHeight
	m.input.Width = msg.Width - 4
	m.syncViewport()
	return m, nil
}

func (m *Model) handleBootstrap(msg bootstrapDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.bootErr = msg.err
		m.machine = dialog.NewMachine(dialog.Options{})
		m.machine.SimulateFrontendError()
		m.state = StateFatal
		return m, nil
	}

	m.boot = msg.res
	m.session = msg.res.Session
	m.machine = dialog.NewMachine(dialog.Options{
		IsSensitive:      sensitive.ContainsSensitiveData,
		IntroductionText: msg.res.IntroductionText,
		Suggested:        msg.res.Suggested,
		DebugTriggers:    m.cfg.Chat.DebugTriggers,
	})
	m.machine.AppendGreeting(msg.res.Greeting)
	if msg.res.QuotaExhausted {
		m.machine.PreemptTokenLimit()
	}
	m.state = StateReady
	return m, m.syncReveals()
}

func (m *Model) handleChatResult(msg chatResultMsg) (tea.Model, tea.Cmd) {
	var effs []dialog.Effect
	if msg.err != nil {
		effs = m.machine.OnChatFailure(msg.err, msg.questionID)
	} else {
		effs = m.machine.OnChatSuccess(msg.resp, msg.questionID)
	}
	m.refreshState()
	return m, tea.Batch(m.execEffects(effs), m.syncReveals())
}

func (m *Model) handleFeedbackOptions(msg feedbackOptionsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The turn simply keeps its fallback reasons.
		return m, nil
	}
	m.machine.OnFeedbackOptions(msg.questionID, msg.requestID, msg.detail)
	m.syncViewport()
	return m, nil
}

func (m *Model) handleTypingTick(msg components.TypingTickMsg) (tea.Model, tea.Cmd) {
	entry := m.entryByKey(msg.Key)
	if entry == nil {
		return m, nil
	}
	cmd := m.typewriter.Advance(msg.Key, entry.Text)
	m.syncViewport()
	return m, cmd
}

func (m *Model) handleTypingDone(msg components.TypingDoneMsg) (tea.Model, tea.Cmd) {
	m.machine.SetTypingComplete(msg.Key)
	m.syncViewport()
	if entry := m.entryByKey(msg.Key); entry != nil && entry.HasCard {
		return m, components.CardRevealCmd(msg.Key, dialog.CardRevealDelay)
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dislikeOpen {
		return m.handleDislikeKey(msg)
	}

	// Only quit works before the startup flow finishes.
	if m.machine == nil {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.state == StateFatal {
			m.machine.Retry()
			m.refreshState()
			return m, nil
		}
		m.recIndex = -1
		return m, nil

	case "tab":
		m.cycleRecommendation(1)
		return m, nil
	case "shift+tab":
		m.cycleRecommendation(-1)
		return m, nil

	case "ctrl+e":
		// Copy the highlighted recommendation into the input box for
		// editing instead of submitting it.
		if rec, ok := m.selectedRecommendation(); ok {
			m.recIndex = -1
			effs := m.machine.StageRecommendedQuestion(rec)
			m.input.SetValue(m.machine.InputText())
			m.input.CursorEnd()
			return m, m.execEffects(effs)
		}
		return m, nil

	case "ctrl+g":
		return m, m.execEffects(m.machine.Like(m.latestQuestionID()))

	case "ctrl+d":
		m.openDislikePanel()
		return m, nil

	case "ctrl+n":
		m.resetConversation()
		return m, m.syncReveals()

	case "enter":
		return m.handleEnter()
	}

	if m.machine != nil && !m.machine.Loading() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.machine.SetInputText(m.input.Value())
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.machine == nil {
		return m, nil
	}

	// A highlighted recommendation wins over the input box.
	if rec, ok := m.selectedRecommendation(); ok {
		m.recIndex = -1
		effs := m.machine.SubmitRecommendedQuestion(rec)
		m.refreshState()
		return m, tea.Batch(m.execEffects(effs), m.syncReveals())
	}

	text := m.input.Value()
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		m.input.SetValue("")
		return m.handleSlashCommand(strings.TrimSpace(text))
	}

	effs := m.machine.SubmitUserText(text)
	m.input.SetValue(m.machine.InputText())
	m.refreshState()
	return m, tea.Batch(m.execEffects(effs), m.syncReveals())
}

// handleSlashCommand runs the local command channel: conversation
// management and, when debug triggers are on, simulated failures.
func (m *Model) handleSlashCommand(raw string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(raw)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/new":
		m.resetConversation()
		return m, m.syncReveals()

	case "/retry":
		m.machine.Retry()
		m.refreshState()
		return m, nil

	case "/intro":
		effs := m.machine.ShowIntroduction()
		return m, tea.Batch(m.execEffects(effs), m.syncReveals())

	case "/like":
		return m, m.execEffects(m.machine.Like(m.latestQuestionID()))

	case "/dislike":
		if len(args) > 0 {
			reason := strings.Join(args, " ")
			return m, m.execEffects(m.machine.DislikeWithReason(reason, m.latestQuestionID()))
		}
		m.openDislikePanel()
		return m, nil

	case "/notice":
		if m.boot != nil {
			switch {
			case m.boot.NoticeContent != "":
				m.toasts.Add(m.boot.NoticeContent)
			case m.boot.NoticeLink != "":
				m.toasts.Add(m.boot.NoticeLink)
			}
		}
		return m, nil

	case "/simulate":
		return m.handleSimulate(args)

	case "/quit":
		m.quitting = true
		return m, tea.Quit
	}

	m.toasts.Add("未知的指令：" + cmd)
	return m, nil
}

func (m *Model) handleSimulate(args []string) (tea.Model, tea.Cmd) {
	if !m.cfg.Chat.DebugTriggers {
		m.toasts.Add("模擬指令未啟用")
		return m, nil
	}
	if len(args) == 1 {
		switch args[0] {
		case "load":
			m.machine.SimulateFrontendError()
			m.refreshState()
			return m, nil
		case "idle":
			m.machine.SimulateIdleTimeout()
			m.refreshState()
			return m, nil
		case "limit":
			m.machine.SimulateTokenLimit()
			m.refreshState()
			return m, m.syncReveals()
		}
	}
	m.toasts.Add("用法：/simulate load|idle|limit")
	return m, nil
}

func (m *Model) handleDislikeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Closing without a reason still reports the negative signal.
		m.dislikeOpen = false
		return m, m.execEffects(m.machine.DislikeWithReason("", m.dislikeTarget))
	case "up", "k":
		if m.dislikeIndex > 0 {
			m.dislikeIndex--
		}
		return m, nil
	case "down", "j":
		if m.dislikeIndex < len(m.dislikeOptions)-1 {
			m.dislikeIndex++
		}
		return m, nil
	case "enter":
		m.dislikeOpen = false
		reason := m.dislikeOptions[m.dislikeIndex]
		return m, m.execEffects(m.machine.DislikeWithReason(reason, m.dislikeTarget))
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) resetConversation() {
	m.machine.ResetConversation()
	m.typewriter.Reset()
	m.tracked = make(map[string]bool)
	m.recIndex = -1
	m.dislikeOpen = false
	m.input.SetValue("")
	m.refreshState()
	if m.boot != nil {
		m.machine.AppendGreeting(m.boot.Greeting)
	}
}

// refreshState recomputes the session-level state from machine flags.
func (m *Model) refreshState() {
	switch {
	case m.machine == nil:
		m.state = StateBooting
	case m.machine.FrontendErrorVisible() || m.machine.IdleTimeoutVisible():
		m.state = StateFatal
	case m.machine.Loading():
		m.state = StateAwaiting
	default:
		m.state = StateReady
	}
}

// syncReveals starts reveal animations for entries appended since the
// last call. User turns appear instantly; system turns type out.
func (m *Model) syncReveals() tea.Cmd {
	if m.machine == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, e := range m.machine.Entries() {
		if m.tracked[e.Key] {
			continue
		}
		m.tracked[e.Key] = true
		if e.Role == dialog.RoleUser || e.Text == "" {
			m.typewriter.StartRevealed(e.Key)
			m.machine.SetTypingComplete(e.Key)
			continue
		}
		cmds = append(cmds, m.typewriter.Start(e.Key))
	}
	m.syncViewport()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) entryByKey(key string) *dialog.Entry {
	if m.machine == nil {
		return nil
	}
	entries := m.machine.Entries()
	for i := range entries {
		if entries[i].Key == key {
			return &entries[i]
		}
	}
	return nil
}

// latestQuestionID returns the question id of the newest system turn.
func (m *Model) latestQuestionID() string {
	if m.machine == nil {
		return ""
	}
	entries := m.machine.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == dialog.RoleSystem && entries[i].QuestionID != "" {
			return entries[i].QuestionID
		}
	}
	return ""
}

// latestRecommendations returns the visible recommendation list of the
// newest entry that shows one.
func (m *Model) latestRecommendations() []dialog.Recommendation {
	if m.machine == nil {
		return nil
	}
	entries := m.machine.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if m.machine.Visibility(i).ShowRecommendations {
			return entries[i].Recommendations
		}
	}
	return nil
}

func (m *Model) cycleRecommendation(dir int) {
	recs := m.latestRecommendations()
	if len(recs) == 0 {
		m.recIndex = -1
		return
	}
	m.recIndex += dir
	if m.recIndex >= len(recs) {
		m.recIndex = 0
	}
	if m.recIndex < 0 {
		m.recIndex = len(recs) - 1
	}
}

func (m *Model) selectedRecommendation() (dialog.Recommendation, bool) {
	recs := m.latestRecommendations()
	if m.recIndex < 0 || m.recIndex >= len(recs) {
		return dialog.Recommendation{}, false
	}
	return recs[m.recIndex], true
}

func (m *Model) openDislikePanel() {
	questionID := m.latestQuestionID()
	options := fallbackOptionsFor(m.machine, questionID)
	if len(options) == 0 {
		return
	}
	m.dislikeOpen = true
	m.dislikeOptions = options
	m.dislikeIndex = 0
	m.dislikeTarget = questionID
}

// fallbackOptionsFor finds the dislike reasons stored on the turn.
func fallbackOptionsFor(machine *dialog.Machine, questionID string) []string {
	if machine == nil {
		return nil
	}
	entries := machine.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Role != dialog.RoleSystem {
			continue
		}
		if questionID != "" && e.QuestionID != questionID {
			continue
		}
		if len(e.FeedbackOptions) > 0 {
			return e.FeedbackOptions
		}
	}
	return nil
}
