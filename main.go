// kbchat TUI - A terminal chat client for knowledge-base support.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/kbchat-tui/internal/annotate"
	"github.com/jeranaias/kbchat-tui/internal/backend"
	"github.com/jeranaias/kbchat-tui/internal/config"
	"github.com/jeranaias/kbchat-tui/internal/controller"
	"github.com/jeranaias/kbchat-tui/internal/feedback"
	"github.com/jeranaias/kbchat-tui/internal/knowledge"
	"github.com/jeranaias/kbchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async config reloads
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.kbchat/config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("kbchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: kbchat requires an interactive terminal")
		os.Exit(1)
	}

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if *configPath != "" {
		path = *configPath
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
		if err == nil {
			path, err = config.ConfigPath()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	runTUI(cfg, path)
}

// runTUI wires the service clients together and starts the interface.
func runTUI(cfg *config.Config, configPath string) {
	// Resolution cache is optional; a failure to open it only costs lookups.
	var cache *knowledge.Cache
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			if p, err := config.DefaultCachePath(); err == nil {
				cachePath = p
			}
		}
		if cachePath != "" {
			if err := config.EnsureConfigDir(); err == nil {
				if c, err := knowledge.OpenCache(cachePath); err == nil {
					cache = c
				} else {
					fmt.Fprintf(os.Stderr, "Warning: resolution cache disabled: %v\n", err)
				}
			}
		}
	}
	if cache != nil {
		defer cache.Close()
	}

	kbClient := knowledge.NewClient(cfg.Services.KnowledgeURL)
	if cache != nil {
		kbClient.SetCache(cache)
	}

	backendClient := backend.NewClient(cfg.Services.BackendURL)
	feedbackClient := feedback.NewClient(cfg.Services.FeedbackURL)

	ctrl := controller.New(
		backendClient,
		annotate.New(kbClient),
		feedback.NewWorkflow(feedbackClient),
		cfg.Chat.WelcomeText,
	)

	navigator := &browserNavigator{baseURL: cfg.Services.KnowledgeURL}

	m := chat.New(ctrl, navigator, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	// Store program reference for async operations
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Live config reloads: the watcher goroutine pushes the fresh config
	// into the event loop.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(fresh *config.Config) {
			programMu.Lock()
			prog := programRef
			programMu.Unlock()
			if prog != nil {
				prog.Send(chat.ConfigReloadedMsg{Config: fresh})
			}
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running kbchat: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// ARTICLE NAVIGATION
// =============================================================================

// browserNavigator opens knowledge articles in the system browser.
type browserNavigator struct {
	baseURL string
}

// OpenArticle launches the platform browser on the article page.
func (n *browserNavigator) OpenArticle(articleID string) error {
	url := n.baseURL + "/articles/" + articleID

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
