// spendtalk TUI - A terminal interface for the credit-card
// consumption-analysis assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/spendtalk-tui/internal/cli"
	"github.com/jeranaias/spendtalk-tui/internal/config"
	"github.com/jeranaias/spendtalk-tui/internal/ui/chat"
	"github.com/jeranaias/spendtalk-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.spendtalk/config.toml)")
		plain       = flag.Bool("plain", false, "run the line-oriented interface instead of the TUI")
		entryCode   = flag.String("code", "", "entry code (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("spendtalk %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *entryCode != "" {
		cfg.API.EntryCode = *entryCode
	}
	config.SetGlobal(cfg)
	styles.ApplyTheme(cfg.UI.Theme)

	// Reload config on file changes for long-running sessions.
	if watcher, err := config.NewWatcher(nil); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if *plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		runPlain(cfg)
		return
	}
	runTUI(cfg)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func runTUI(cfg *config.Config) {
	// Keep request logging out of the alternate screen.
	logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	program := tea.NewProgram(chat.New(cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlain(cfg *config.Config) {
	c := cli.NewPlainChat(cfg)
	defer c.Close()

	if err := c.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
