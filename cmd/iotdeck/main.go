package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lichen129/iotdeck/internal/browser"
	"github.com/lichen129/iotdeck/internal/config"
	"github.com/lichen129/iotdeck/internal/rules"
	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/internal/tui"
	"github.com/lichen129/iotdeck/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env next to the binary is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("iotdeck " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "web":
			return browser.Open(cfg.DashboardURL)
		case "logout":
			return runLogout(cfg)
		}
	}

	logger, err := newFileLogger(cfg)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store := session.NewStore(cfg.CredentialsPath())
	ruleStore := rules.NewStore(cfg.RulesPath())

	api := client.New(cfg.APIBaseURL, nil)
	api.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)

	dispatch := tui.NewDispatcher()
	sess := session.NewManager(api, store, dispatch, dispatch, logger)

	// The client pulls the token per request and reports rejections back,
	// so an expired session converges on the login screen no matter which
	// call notices first.
	api.SetTokenSource(sess.Token)
	api.SetUnauthorizedHook(sess.HandleUnauthorized)

	app := tui.NewApp(sess, api, ruleStore, cfg.HistoryLimit, version)

	p := tea.NewProgram(app, tea.WithAltScreen())
	dispatch.Attach(p)

	logger.Info("starting", zap.String("version", version), zap.String("api", cfg.APIBaseURL))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// runLogout clears the persisted credentials without starting the TUI. The
// server session, if any, expires on its own.
func runLogout(cfg *config.Config) error {
	store := session.NewStore(cfg.CredentialsPath())
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	fmt.Println("signed out")
	return nil
}

// newFileLogger builds a logger writing to the state dir. The TUI owns
// stdout and stderr while it runs.
func newFileLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.StateDir, 0700); err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.LogPath()}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath()}
	return zcfg.Build()
}

func printHelp() {
	fmt.Print(`iotdeck - terminal dashboard for your IoT devices

Usage:
  iotdeck            start the dashboard
  iotdeck web        open the web dashboard in your browser
  iotdeck logout     clear saved credentials
  iotdeck version    print the version
  iotdeck help       show this help

Environment:
  IOTDECK_API_URL                  API base URL
  IOTDECK_DASHBOARD_URL            web dashboard URL for 'iotdeck web'
  IOTDECK_STATE_DIR                state directory (default ~/.iotdeck)
  IOTDECK_REQUEST_TIMEOUT_SECONDS  HTTP timeout (default 30)
  IOTDECK_HISTORY_LIMIT            readings per history request (default 100)
`)
}
