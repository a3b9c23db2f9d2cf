// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"strings"
	"time"

	"github.com/jeranaias/spendtalk-tui/internal/api"
)

// Fixed choreography delays. The delays live here so every driver
// (TUI, plain CLI, tests) agrees on the same timing.
const (
	// SimulatedLatency paces local short-circuit answers (sensitive
	// input, prefilled responses) so they read like real turns.
	SimulatedLatency = 500 * time.Millisecond

	// TokenLimitDelay separates an answer from the quota notice that
	// follows it, so the user reads the answer first.
	TokenLimitDelay = 500 * time.Millisecond

	// CardRevealDelay is how long after an entry's text reveal the
	// consumption card slides in.
	CardRevealDelay = 300 * time.Millisecond

	// ToastDuration is how long acknowledgement toasts stay up.
	ToastDuration = 2 * time.Second
)

// User-facing strings owned by the transcript layer.
const (
	DefaultGreeting = "您好，想了解什麼資訊嗎？"

	DefaultIntroduction = "您好，此為「對話式功能搜尋」服務。您可以詢問信用卡消費的相關問題，" +
		"我們將提供對應的分析結果。關於使用規定 (例：無法詢問單一卡別)，請點擊「注意事項」進行查看。"

	// IntroductionMarker routes a suggestion click to the introduction
	// flow instead of the backend.
	IntroductionMarker = "使用介紹"

	TitleSuggested = "推薦問題"
	TitleSimilar   = "相關問題"

	ToastFeedbackThanks = "謝謝您的回饋"
	ToastFeedbackFailed = "回饋發送失敗，請稍後再試"
	ToastPrefilledInput = "已自動帶入您選擇的提問例句"
)

// Literal input substrings that simulate failure states. Only honored
// when debug triggers are enabled; production input never routes on
// message content.
const (
	triggerFrontendError = "加載"
	triggerIdleTimeout   = "閒置"
	triggerTokenLimit    = "上限"
)

// Fallback dislike reasons used when the backend catalogue is missing.
var fallbackDislikeReasons = []string{
	"回應速度太慢",
	"對話流程複雜",
	"問題理解有誤",
	"金額計算有誤",
}

// =============================================================================
// EFFECTS
// =============================================================================

// Effect describes asynchronous work a command could not do itself.
// Drivers execute effects in order and feed results back through the
// On* methods.
type Effect interface{ isEffect() }

// CallChat asks the driver to submit the text to the backend and call
// OnChatSuccess or OnChatFailure with the same question id.
type CallChat struct {
	QuestionID string
	Text       string
}

// DelayedAppend asks the driver to wait Delay, then call
// CommitDelayedAppend with this same value.
type DelayedAppend struct {
	Delay       time.Duration
	Entry       Entry
	EndsLoading bool
}

// FetchFeedback asks the driver to fetch the dislike-reason catalogue
// for RequestID and call OnFeedbackOptions with the result.
type FetchFeedback struct {
	QuestionID string
	RequestID  string
}

// SendComment asks the driver to submit a verdict and call
// OnCommentResult with the outcome.
type SendComment struct {
	RequestID string
	OptionID  string
	Content   string
	Positive  bool
}

// ShowToast asks the driver to surface a transient acknowledgement.
type ShowToast struct {
	Text string
}

func (CallChat) isEffect()      {}
func (DelayedAppend) isEffect() {}
func (FetchFeedback) isEffect() {}
func (SendComment) isEffect()   {}
func (ShowToast) isEffect()     {}

// =============================================================================
// MACHINE
// =============================================================================

// IsSensitiveFunc screens raw input for personal data.
type IsSensitiveFunc func(string) bool

// Options configures a new Machine.
type Options struct {
	// IsSensitive screens input before it reaches the backend.
	// Nil means no screening.
	IsSensitive IsSensitiveFunc

	// IntroductionText overrides the built-in introduction.
	IntroductionText string

	// Suggested is the initialization-time suggestion list, already
	// filtered of the introduction entry. Attached synchronously to
	// introduction turns and reused as a recommendation fallback.
	Suggested []Recommendation

	// DebugTriggers enables the literal input substrings that
	// simulate failure states.
	DebugTriggers bool
}

// Machine owns the conversation state. It is not safe for concurrent
// use; drivers serialize all calls on their event loop.
type Machine struct {
	entries []Entry
	loading bool

	frontendErrorVisible bool
	idleTimeoutVisible   bool

	inputText string

	typingDone map[string]bool
	cardShown  map[string]bool

	isSensitive   IsSensitiveFunc
	introText     string
	suggested     []Recommendation
	debugTriggers bool

	// lastRequestID is the fallback target for feedback when a verdict
	// arrives without a question id.
	lastRequestID string
}

// NewMachine creates an idle machine.
func NewMachine(opts Options) *Machine {
	intro := opts.IntroductionText
	if intro == "" {
		intro = DefaultIntroduction
	}
	return &Machine{
		typingDone:    make(map[string]bool),
		cardShown:     make(map[string]bool),
		isSensitive:   opts.IsSensitive,
		introText:     intro,
		suggested:     opts.Suggested,
		debugTriggers: opts.DebugTriggers,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Entries returns the transcript. Callers must not mutate it.
func (m *Machine) Entries() []Entry { return m.entries }

// Loading reports whether a chat request is outstanding.
func (m *Machine) Loading() bool { return m.loading }

// FrontendErrorVisible reports whether the load-failure overlay is up.
func (m *Machine) FrontendErrorVisible() bool { return m.frontendErrorVisible }

// IdleTimeoutVisible reports whether the idle-logout overlay is up.
func (m *Machine) IdleTimeoutVisible() bool { return m.idleTimeoutVisible }

// InputText returns the staged input-box text.
func (m *Machine) InputText() string { return m.inputText }

// SetInputText stages text in the input box without submitting it.
func (m *Machine) SetInputText(text string) { m.inputText = text }

// InputDisabled reports whether new submissions are accepted at all:
// a fatal overlay or a trailing quota notice locks the input.
func (m *Machine) InputDisabled() bool {
	if m.frontendErrorVisible || m.idleTimeoutVisible {
		return true
	}
	if n := len(m.entries); n > 0 && m.entries[n-1].ErrorKind == KindTokenLimit {
		return true
	}
	return false
}

// TypingDone reports whether the entry's text reveal has finished.
func (m *Machine) TypingDone(key string) bool { return m.typingDone[key] }

// CardShown reports whether the entry's consumption card has revealed.
func (m *Machine) CardShown(key string) bool { return m.cardShown[key] }

// SetTypingComplete marks an entry's text reveal as finished.
func (m *Machine) SetTypingComplete(key string) { m.typingDone[key] = true }

// SetCardRevealed marks an entry's consumption card as revealed.
func (m *Machine) SetCardRevealed(key string) { m.cardShown[key] = true }

// Visibility computes the presentation decision for the entry at index.
func (m *Machine) Visibility(index int) Visibility {
	return ComputeVisibility(m.entries[index], index, m.entries, m.typingDone, m.cardShown)
}

// hasQuestionID reports whether any entry still carries the id. Stale
// timers check this before appending.
func (m *Machine) hasQuestionID(questionID string) bool {
	for i := range m.entries {
		if m.entries[i].QuestionID == questionID {
			return true
		}
	}
	return false
}

func (m *Machine) append(e Entry) {
	m.entries = append(m.entries, e)
}

// =============================================================================
// COMMANDS
// =============================================================================

// AppendGreeting appends the opening system message. The greeting has
// no question id; nothing ever correlates back to it.
func (m *Machine) AppendGreeting(text string) {
	if text == "" {
		text = DefaultGreeting
	}
	e := newEntry(RoleSystem, text, "")
	e.WithFeedback = False
	m.append(e)
}

// SubmitUserText handles a raw input submission. It is a no-op while a
// request is outstanding, while input is locked, or when the text trims
// to empty.
func (m *Machine) SubmitUserText(raw string) []Effect {
	text := strings.TrimSpace(raw)
	if text == "" || m.loading || m.InputDisabled() {
		return nil
	}
	m.inputText = ""

	if m.debugTriggers {
		switch {
		case strings.Contains(text, triggerFrontendError):
			m.SimulateFrontendError()
			return nil
		case strings.Contains(text, triggerIdleTimeout):
			m.SimulateIdleTimeout()
			return nil
		case strings.Contains(text, triggerTokenLimit):
			m.SimulateTokenLimit()
			return nil
		}
	}

	questionID := newQuestionID()
	m.append(newEntry(RoleUser, text, questionID))

	if m.isSensitive != nil && m.isSensitive(text) {
		m.loading = true
		reply := newEntry(RoleSystem, api.CodeSensitiveData.UserMessage(), questionID)
		reply.ErrorKind = KindSensitiveData
		reply.Recommendations = m.suggested
		reply.QuestionTitle = TitleSuggested
		return []Effect{DelayedAppend{
			Delay:       SimulatedLatency,
			Entry:       reply,
			EndsLoading: true,
		}}
	}

	m.Retry()
	m.loading = true
	return []Effect{CallChat{QuestionID: questionID, Text: text}}
}

// CommitDelayedAppend applies a DelayedAppend after its delay elapsed.
// The append is dropped when the originating question id is no longer
// in the transcript, which happens after a reset.
func (m *Machine) CommitDelayedAppend(eff DelayedAppend) {
	if eff.Entry.QuestionID != "" && !m.hasQuestionID(eff.Entry.QuestionID) {
		return
	}
	m.append(eff.Entry)
	if eff.EndsLoading {
		m.loading = false
	}
}

// OnChatSuccess applies a decoded backend response for the given turn.
func (m *Machine) OnChatSuccess(resp *api.ChatResponse, questionID string) []Effect {
	m.loading = false
	if !m.hasQuestionID(questionID) {
		return nil
	}

	if resp.RequestID != "" {
		m.lastRequestID = resp.RequestID
	}

	if resp.QuotaExhausted() {
		return m.appendQuotaExhausted(resp, questionID)
	}

	if resp.ResponseMessageObject != nil && resp.ResponseMessageObject.GenText != "" {
		return m.appendAnswer(resp, questionID)
	}

	// No generated text: the code decides the reply.
	return m.appendCodedReply(resp, questionID)
}

// appendAnswer handles the normal success shape: one System entry with
// the generated text, deep link and derived recommendations, plus an
// async fetch of the turn's feedback options.
func (m *Machine) appendAnswer(resp *api.ChatResponse, questionID string) []Effect {
	msg := resp.ResponseMessageObject

	recs, title := deriveRecommendations(msg)
	if len(recs) == 0 {
		recs = m.suggested
	}

	e := newEntry(RoleSystem, resp.DisplayText(), questionID)
	e.RequestID = resp.RequestID
	e.DeepLink = msg.Deeplink
	e.HasCard = msg.Deeplink != ""
	e.Recommendations = recs
	e.QuestionTitle = title
	m.append(e)

	if resp.Code.Success() && resp.RequestID != "" {
		return []Effect{FetchFeedback{QuestionID: questionID, RequestID: resp.RequestID}}
	}
	return nil
}

// appendQuotaExhausted handles the turn that consumed the last request:
// the answer first, then the quota notice after a beat.
func (m *Machine) appendQuotaExhausted(resp *api.ChatResponse, questionID string) []Effect {
	if text := resp.DisplayText(); text != "" {
		e := newEntry(RoleSystem, text, questionID)
		e.RequestID = resp.RequestID
		if resp.ResponseMessageObject != nil {
			e.DeepLink = resp.ResponseMessageObject.Deeplink
			e.ShowGoToAction = resp.ResponseMessageObject.Deeplink != ""
		}
		m.append(e)
	}

	notice := newEntry(RoleSystem, api.CodeTokenLimit.UserMessage(), questionID)
	notice.ErrorKind = KindTokenLimit
	notice.ShowGoToAction = true
	notice.WithFeedback = False
	notice.Recommendations = []Recommendation{}
	return []Effect{DelayedAppend{Delay: TokenLimitDelay, Entry: notice}}
}

// appendCodedReply renders a rejection code as a System entry.
func (m *Machine) appendCodedReply(resp *api.ChatResponse, questionID string) []Effect {
	kind := kindForCode(resp.Code)
	e := newEntry(RoleSystem, resp.Code.UserMessage(), questionID)
	e.ErrorKind = kind
	e.RequestID = resp.RequestID
	switch kind {
	case KindTokenLimit:
		e.ShowGoToAction = true
		e.WithFeedback = False
	case KindSystem:
		e.WithFeedback = False
	}
	m.append(e)
	return nil
}

// OnChatFailure records a transport failure for the given turn.
// Feedback stays eligible unless the backend itself failed (5xx).
func (m *Machine) OnChatFailure(err error, questionID string) []Effect {
	m.loading = false
	if !m.hasQuestionID(questionID) {
		return nil
	}
	e := newEntry(RoleSystem, api.CodeSystem.UserMessage(), questionID)
	e.ErrorKind = KindSystem
	if api.IsServerError(err) {
		e.WithFeedback = False
	}
	m.append(e)
	return nil
}

// OnFeedbackOptions patches the answered entry with its request id and
// dislike-reason catalogue. Safe to call after the entry has rendered;
// silently dropped when the turn is gone.
func (m *Machine) OnFeedbackOptions(questionID, requestID string, detail *api.FeedbackResponse) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := &m.entries[i]
		if e.Role != RoleSystem || e.QuestionID != questionID {
			continue
		}
		e.RequestID = requestID
		e.FeedbackDetail = detail
		if opts := detail.Options(); len(opts) > 0 {
			e.FeedbackOptions = opts
		} else {
			e.FeedbackOptions = fallbackDislikeReasons
		}
		return
	}
}

// SubmitRecommendedQuestion handles a click on a recommendation.
func (m *Machine) SubmitRecommendedQuestion(rec Recommendation) []Effect {
	if m.loading {
		return nil
	}
	if strings.Contains(rec.DisplayText, IntroductionMarker) {
		return m.ShowIntroduction()
	}
	if rec.Prefilled != "" {
		return m.submitPrefilled(rec)
	}
	return m.SubmitUserText(rec.DisplayText)
}

// submitPrefilled plays a pre-canned answer through the normal turn
// choreography without touching the backend.
func (m *Machine) submitPrefilled(rec Recommendation) []Effect {
	if m.InputDisabled() {
		return nil
	}
	m.Retry()
	questionID := newQuestionID()
	m.append(newEntry(RoleUser, rec.DisplayText, questionID))
	m.loading = true

	reply := newEntry(RoleSystem, rec.Prefilled, questionID)
	reply.Recommendations = m.suggested
	reply.QuestionTitle = TitleSuggested
	return []Effect{DelayedAppend{
		Delay:       SimulatedLatency,
		Entry:       reply,
		EndsLoading: true,
	}}
}

// StageRecommendedQuestion copies a recommendation into the input box
// for editing instead of submitting it.
func (m *Machine) StageRecommendedQuestion(rec Recommendation) []Effect {
	m.inputText = rec.DisplayText
	return []Effect{ShowToast{Text: ToastPrefilledInput}}
}

// ShowIntroduction appends the how-to-use exchange. The suggestion list
// attaches to the System entry in the same append, so there is no
// window where the entry exists without its recommendations.
func (m *Machine) ShowIntroduction() []Effect {
	questionID := newQuestionID()

	q := newEntry(RoleUser, IntroductionMarker, questionID)
	q.IsIntroduction = true
	m.append(q)

	a := newEntry(RoleSystem, m.introText, questionID)
	a.IsIntroduction = true
	a.WithFeedback = False
	a.Recommendations = m.suggested
	a.QuestionTitle = TitleSuggested
	m.append(a)
	return nil
}

// requestIDFor resolves the feedback target for a verdict: the turn's
// own request id when a question id is given, else the most recent one.
func (m *Machine) requestIDFor(questionID string) string {
	if questionID != "" {
		for i := len(m.entries) - 1; i >= 0; i-- {
			e := &m.entries[i]
			if e.Role == RoleSystem && e.QuestionID == questionID && e.RequestID != "" {
				return e.RequestID
			}
		}
	}
	return m.lastRequestID
}

// Like submits a positive verdict on the given turn.
func (m *Machine) Like(questionID string) []Effect {
	requestID := m.requestIDFor(questionID)
	if requestID == "" {
		// Nothing to correlate with; acknowledge anyway.
		return []Effect{ShowToast{Text: ToastFeedbackThanks}}
	}
	return []Effect{SendComment{RequestID: requestID, Content: "good", Positive: true}}
}

// DislikeWithReason submits a negative verdict. An empty reason means
// the panel was closed without choosing one.
func (m *Machine) DislikeWithReason(reason, questionID string) []Effect {
	requestID := m.requestIDFor(questionID)
	if requestID == "" {
		return []Effect{ShowToast{Text: ToastFeedbackThanks}}
	}

	var optionID string
	if reason != "" {
		if detail := m.feedbackDetailFor(questionID); detail != nil {
			optionID = detail.OptionIDFor(reason)
		}
	}
	content := reason
	if content == "" {
		content = "bad"
	}
	return []Effect{SendComment{RequestID: requestID, OptionID: optionID, Content: content}}
}

func (m *Machine) feedbackDetailFor(questionID string) *api.FeedbackResponse {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := &m.entries[i]
		if e.Role != RoleSystem || e.FeedbackDetail == nil {
			continue
		}
		if questionID == "" || e.QuestionID == questionID {
			return e.FeedbackDetail
		}
	}
	return nil
}

// OnCommentResult converts a verdict submission outcome into a toast.
// The user gets an acknowledgement either way.
func (m *Machine) OnCommentResult(err error) []Effect {
	if err != nil {
		return []Effect{ShowToast{Text: ToastFeedbackFailed}}
	}
	return []Effect{ShowToast{Text: ToastFeedbackThanks}}
}

// =============================================================================
// OVERLAYS, RETRY, RESET
// =============================================================================

// SimulateFrontendError raises the load-failure overlay.
func (m *Machine) SimulateFrontendError() { m.frontendErrorVisible = true }

// SimulateIdleTimeout raises the idle-logout overlay.
func (m *Machine) SimulateIdleTimeout() { m.idleTimeoutVisible = true }

// SimulateTokenLimit appends a quota notice directly, with no user turn.
func (m *Machine) SimulateTokenLimit() {
	e := newEntry(RoleSystem, api.CodeTokenLimit.UserMessage(), "")
	e.ErrorKind = KindTokenLimit
	e.ShowGoToAction = true
	e.WithFeedback = False
	e.Recommendations = []Recommendation{}
	m.append(e)
}

// PreemptTokenLimit enters the quota-exhausted display state at
// startup, before any user turn.
func (m *Machine) PreemptTokenLimit() { m.SimulateTokenLimit() }

// Retry clears overlay and error visibility without touching the
// transcript.
func (m *Machine) Retry() {
	m.frontendErrorVisible = false
	m.idleTimeoutVisible = false
}

// ResetConversation returns the machine to idle: empty transcript, no
// loading, no overlays, empty input.
func (m *Machine) ResetConversation() {
	m.entries = nil
	m.loading = false
	m.frontendErrorVisible = false
	m.idleTimeoutVisible = false
	m.inputText = ""
	m.typingDone = make(map[string]bool)
	m.cardShown = make(map[string]bool)
}

// =============================================================================
// RECOMMENDATION DERIVATION
// =============================================================================

// deriveRecommendations picks the follow-up list and its panel title
// from a chat answer. Similar-only turns are titled as related
// questions; everything else falls back to the suggested title.
func deriveRecommendations(msg *api.ResponseMessageObject) ([]Recommendation, string) {
	similar := toRecommendations(msg.SimilarQuestion)
	suggest := toRecommendations(msg.QuestionSuggest)

	switch {
	case len(similar) > 0 && len(suggest) == 0:
		return similar, TitleSimilar
	case len(suggest) > 0 && len(similar) == 0:
		return suggest, TitleSuggested
	case len(suggest) > 0:
		return suggest, TitleSuggested
	}
	return nil, TitleSuggested
}

func toRecommendations(qs []api.QuestionSuggest) []Recommendation {
	if len(qs) == 0 {
		return nil
	}
	out := make([]Recommendation, 0, len(qs))
	for _, q := range qs {
		out = append(out, Recommendation{
			DisplayText: q.QuestionContent,
			Prefilled:   q.QuestionText,
		})
	}
	return out
}
