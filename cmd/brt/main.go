// Package main is the entry point for burnrate-tui.
// It loads configuration, starts the log loader and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/burnrate-tui/internal/app"
	"github.com/j-veylop/burnrate-tui/internal/config"
	"github.com/j-veylop/burnrate-tui/internal/logger"
	"github.com/j-veylop/burnrate-tui/internal/services"
	"github.com/j-veylop/burnrate-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/burnrate-tui/internal/ui/tabs/history"
	"github.com/j-veylop/burnrate-tui/internal/ui/tabs/info"
	"github.com/j-veylop/burnrate-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Send logs to a file so they stay out of the alternate screen
	logCloser, err := logger.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logCloser.Close()

	logger.Info("starting", "version", version.GetVersion(), "plan", string(cfg.Plan))

	// 3. Start the services: database, log loader and file watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root model and its tabs over the shared state
	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state), // Tab 0: current session
		history.New(state),   // Tab 1: past sessions
		info.New(state, cfg), // Tab 2: configuration and plans
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`burnrate-tui - token burn rate monitor for Claude usage logs

Usage:
  brt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Sessions, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll or move through sessions
  t               Change the sessions time range
  c               Toggle the burn rate chart
  p               Cycle the plan (Pro, Max 5x, Max 20x, Auto-detect)
  r               Rescan usage logs
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  PLAN              pro, max5, max20 or auto (default: pro)
  CLAUDE_DATA_DIRS  Usage log directories, separated by the path list separator
  DATABASE_PATH     SQLite database path
  PLANS_FILE        TOML file overriding the plan token limits
  REFRESH_INTERVAL  UI refresh interval (default: 5s)
  POLL_INTERVAL     Log rescan interval when watching is unavailable (default: 10s)
  HISTORY_DAYS      Days of usage kept in memory (default: 8)
  TIMEZONE          Timezone for session boundaries (default: Local)
  LOG_FILE          Log file path, empty to log to stderr
  LOG_LEVEL         debug, info, warn or error (default: info)
  NOTIFICATIONS     Desktop alerts for high burn rate (default: true)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/burnrate-tui/.env
  - ~/.claude/.env`)
}
