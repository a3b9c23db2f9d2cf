// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plain.go - Interactive plain-terminal chat for spendtalk.
//
// Used when stdout is not a TTY capable of running the full-screen
// view, or when the user passes -plain. Drives the same conversation
// machine as the TUI, executing effects inline with real timers.
//
// Interactive Commands (during chat):
//   /intro              Show the how-to-use exchange
//   /like               Thumbs-up the latest answer
//   /dislike [reason]   Thumbs-down, optionally with a reason
//   /notice             Print the legal notice
//   /new                Start a new conversation
//   /retry              Clear error overlays
//   /quit, /q           Exit
//   Ctrl+D              Exit
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/spendtalk-tui/internal/api"
	"github.com/jeranaias/spendtalk-tui/internal/bootstrap"
	"github.com/jeranaias/spendtalk-tui/internal/config"
	"github.com/jeranaias/spendtalk-tui/internal/dialog"
	"github.com/jeranaias/spendtalk-tui/internal/sensitive"
	"github.com/jeranaias/spendtalk-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	fatalStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
)

// =============================================================================
// PLAIN CHAT
// =============================================================================

// PlainChat is the line-oriented conversation driver.
type PlainChat struct {
	line        *liner.State
	historyFile string

	cfg     *config.Config
	client  *api.Client
	session *api.Session
	machine *dialog.Machine
	boot    *bootstrap.Result
}

// NewPlainChat creates the driver with input history support.
func NewPlainChat(cfg *config.Config) *PlainChat {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &PlainChat{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
		cfg:         cfg,
		client: api.NewClient(cfg.API.BaseURL).
			WithTimeout(cfg.Timeout()).
			WithDevice(cfg.API.Device, cfg.API.DeviceVersion),
	}
	c.loadHistory()
	return c
}

// Close flushes history and restores the terminal.
func (c *PlainChat) Close() {
	c.saveHistory()
	c.line.Close()
}

func (c *PlainChat) loadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.ReadHistory(f)
}

func (c *PlainChat) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.Create(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Run executes the conversation loop until exit.
func (c *PlainChat) Run(ctx context.Context) error {
	res, err := bootstrap.Run(ctx, c.client, c.cfg.API.EntryCode)
	if err != nil {
		fmt.Println(fatalStyle.Render("前端加載失敗，請重新整理頁面。"))
		return err
	}
	c.boot = res
	c.session = res.Session
	c.machine = dialog.NewMachine(dialog.Options{
		IsSensitive:      sensitive.ContainsSensitiveData,
		IntroductionText: res.IntroductionText,
		Suggested:        res.Suggested,
		DebugTriggers:    c.cfg.Chat.DebugTriggers,
	})

	if res.HeaderDescription != "" {
		fmt.Println(panelStyle.Render(res.HeaderDescription))
	}
	c.machine.AppendGreeting(res.Greeting)
	if res.QuotaExhausted {
		c.machine.PreemptTokenLimit()
	}
	c.printNewEntries(0)

	for {
		if c.machine.FrontendErrorVisible() || c.machine.IdleTimeoutVisible() {
			c.printOverlay()
		}

		input, err := c.line.Prompt(promptStyle.Render("> "))
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		c.line.AppendHistory(input)

		if strings.HasPrefix(strings.TrimSpace(input), "/") {
			if quit := c.handleCommand(ctx, strings.TrimSpace(input)); quit {
				return nil
			}
			continue
		}

		before := len(c.machine.Entries())
		effs := c.machine.SubmitUserText(input)
		c.printNewEntries(before)
		c.runEffects(ctx, effs)
	}
}

// handleCommand runs a slash command. Returns true on quit.
func (c *PlainChat) handleCommand(ctx context.Context, raw string) bool {
	fields := strings.Fields(raw)
	cmd, args := fields[0], fields[1:]
	before := len(c.machine.Entries())

	switch cmd {
	case "/quit", "/q":
		return true

	case "/new":
		c.machine.ResetConversation()
		c.machine.AppendGreeting(c.boot.Greeting)
		fmt.Println(panelStyle.Render("--- 新對話 ---"))
		c.printNewEntries(0)

	case "/retry":
		c.machine.Retry()

	case "/intro":
		c.runEffects(ctx, c.machine.ShowIntroduction())
		c.printNewEntries(before)

	case "/like":
		c.runEffects(ctx, c.machine.Like(""))

	case "/dislike":
		reason := strings.Join(args, " ")
		c.runEffects(ctx, c.machine.DislikeWithReason(reason, ""))

	case "/notice":
		if c.boot.NoticeContent != "" {
			fmt.Println(panelStyle.Render(c.boot.NoticeContent))
		} else if c.boot.NoticeLink != "" {
			fmt.Println(panelStyle.Render(c.boot.NoticeLink))
		}

	default:
		fmt.Println(panelStyle.Render("未知的指令：" + cmd))
	}
	return false
}

// runEffects executes machine effects inline, with real timers, and
// feeds results back until the machine settles.
func (c *PlainChat) runEffects(ctx context.Context, effs []dialog.Effect) {
	for len(effs) > 0 {
		next := effs[:0:0]
		for _, eff := range effs {
			switch e := eff.(type) {
			case dialog.CallChat:
				before := len(c.machine.Entries())
				resp, err := c.client.Chat(ctx, c.session, e.Text)
				if err != nil {
					next = append(next, c.machine.OnChatFailure(err, e.QuestionID)...)
				} else {
					next = append(next, c.machine.OnChatSuccess(resp, e.QuestionID)...)
				}
				c.printNewEntries(before)

			case dialog.DelayedAppend:
				time.Sleep(e.Delay)
				before := len(c.machine.Entries())
				c.machine.CommitDelayedAppend(e)
				c.printNewEntries(before)

			case dialog.FetchFeedback:
				detail, err := c.client.Feedback(ctx, c.session, e.RequestID)
				if err == nil {
					c.machine.OnFeedbackOptions(e.QuestionID, e.RequestID, detail)
				}

			case dialog.SendComment:
				var err error
				if e.Positive {
					err = c.client.Like(ctx, c.session, e.RequestID)
				} else {
					err = c.client.Dislike(ctx, c.session, e.RequestID, e.OptionID, e.Content)
				}
				next = append(next, c.machine.OnCommentResult(err)...)

			case dialog.ShowToast:
				fmt.Println(panelStyle.Render("· " + e.Text))
			}
		}
		effs = next
	}
}

// printNewEntries renders transcript entries appended since index from.
// Plain mode has no typewriter; entries appear fully revealed.
func (c *PlainChat) printNewEntries(from int) {
	entries := c.machine.Entries()
	for i := from; i < len(entries); i++ {
		e := entries[i]
		c.machine.SetTypingComplete(e.Key)
		if e.HasCard {
			c.machine.SetCardRevealed(e.Key)
		}
		c.printEntry(e, i)
	}
}

func (c *PlainChat) printEntry(e dialog.Entry, index int) {
	if e.Role == dialog.RoleUser {
		return // the user just typed it
	}

	style := systemStyle
	if e.ErrorKind != dialog.KindNone {
		style = errorStyle
	}
	fmt.Println(style.Render(e.Text))

	vis := c.machine.Visibility(index)
	if vis.ShowGoTo {
		target := e.DeepLink
		if target == "" {
			target = c.cfg.Chat.GoToURL
		}
		fmt.Println(panelStyle.Render("前往 → " + target))
	}
	if vis.ShowNotice {
		fmt.Println(panelStyle.Render(c.boot.NoticeLabel + " → /notice"))
	}
	if vis.ShowRecommendations {
		title := e.QuestionTitle
		if title == "" {
			title = dialog.TitleSuggested
		}
		fmt.Println(panelStyle.Render(title + "："))
		for _, rec := range e.Recommendations {
			fmt.Println(panelStyle.Render("  · " + rec.DisplayText))
		}
	}
	if vis.ShowFeedback {
		fmt.Println(panelStyle.Render("(/like · /dislike)"))
	}
}

// printOverlay renders the fatal overlay state.
func (c *PlainChat) printOverlay() {
	if c.machine.IdleTimeoutVisible() {
		fmt.Println(fatalStyle.Render("您的操作已逾時，請重新開啟以繼續使用。"))
	} else {
		fmt.Println(fatalStyle.Render("前端加載失敗，請重新整理頁面。"))
	}
	fmt.Println(panelStyle.Render("輸入 /retry 重試，或 /quit 離開"))
}
