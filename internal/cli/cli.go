// Package cli provides the command-line interface for the focuserve
// launcher: serving the built Focus Timer UI, preflight checks, serve
// history, and update checks.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/aiam-project/focuserve/internal/assets"
	"github.com/aiam-project/focuserve/internal/browser"
	"github.com/aiam-project/focuserve/internal/config"
	"github.com/aiam-project/focuserve/internal/server"
	"github.com/aiam-project/focuserve/internal/storage"
)

// Version is the focuserve build version, compared against GitHub
// releases by the check-update command.
const Version = "1.2.0"

// openBrowser requests the OS to open a URL. Tests swap it out to
// exercise the warn-and-continue path without a display.
var openBrowser = browser.Open

// NewApp creates and configures the main CLI application. Running the
// binary with no command behaves exactly like `focuserve serve`.
func NewApp() *cli.App {
	return &cli.App{
		Name:     "focuserve",
		Usage:    "Serve the built Focus Timer UI locally and open it in a browser",
		Version:  Version,
		Compiled: time.Now(),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultFileName,
				Usage:   "path to focuserve configuration file",
				EnvVars: []string{"FOCUSERVE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level for diagnostics on stderr (debug, info, warn, error)",
				EnvVars: []string{"FOCUSERVE_LOG_LEVEL"},
			},
		}, serveFlags()...),
		Action: serveUI,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the built UI (the default when no command is given)",
				Flags:  serveFlags(),
				Action: serveUI,
			},
			{
				Name:   "doctor",
				Usage:  "Check the UI build toolchain and build directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "build directory to inspect (default: ui/build next to the executable)",
						EnvVars: []string{"FOCUSERVE_DIR"},
					},
				},
				Action: runDoctor,
			},
			{
				Name:  "history",
				Usage: "List past serve sessions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "number of sessions to show (0 shows all)",
					},
				},
				Action: showHistory,
			},
			{
				Name:  "check-update",
				Usage: "Check GitHub for a newer focuserve release",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "repo",
						Usage: "GitHub repository to check, in owner/repo form",
					},
				},
				Action: checkUpdate,
			},
		},
	}
}

// serveFlags are shared between the serve command and the default
// invocation so `focuserve --port 3000` and `focuserve serve --port
// 3000` behave the same.
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "TCP port to serve on",
			EnvVars: []string{"FOCUSERVE_PORT"},
		},
		&cli.StringFlag{
			Name:    "dir",
			Usage:   "build directory to serve (default: ui/build next to the executable)",
			EnvVars: []string{"FOCUSERVE_DIR"},
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "interface to bind (default: all interfaces)",
		},
		&cli.BoolFlag{
			Name:  "no-browser",
			Usage: "do not open the browser after starting",
		},
	}
}

// serveUI implements the launcher: validate the build directory, bind
// the port, open the browser, and serve until interrupted.
func serveUI(c *cli.Context) error {
	logger := NewLogger(ParseLogLevelOrDefault(c.String("log-level")))

	cfg, err := loadServeConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	buildDir, err := resolveBuildDir(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := assets.Validate(buildDir); err != nil {
		if errors.Is(err, assets.ErrBuildDirMissing) || errors.Is(err, assets.ErrBuildDirNotDir) {
			return cli.Exit(assets.RemediationMessage(buildDir), 1)
		}
		return cli.Exit(err.Error(), 1)
	}

	srv := server.New(server.Config{
		Host: cfg.Host,
		Port: cfg.Port,
		Root: buildDir,
	}, logger)

	// Bind before any status output or browser launch so port conflicts
	// fail fast (no retry).
	if err := srv.Listen(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	history := openHistory(cfg, logger)
	session := history.start(srv.Port(), buildDir)
	defer history.close()

	fmt.Printf("Focus Timer running at %s\n", srv.URL())
	fmt.Println("Press Ctrl+C to stop.")

	if cfg.BrowserEnabled() {
		if err := openBrowser(srv.URL()); err != nil {
			logger.Warn("could not open browser automatically", "error", err)
		}
	} else {
		logger.Debug("browser opening disabled")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := srv.Serve(ctx)
	history.finish(session, srv.Requests(), srv.BytesSent(), serveErr == nil)

	if serveErr != nil {
		return cli.Exit(serveErr.Error(), 1)
	}

	fmt.Println("Shutting down server. Goodbye!")
	return nil
}

// loadServeConfig loads the config file and applies flag overrides.
func loadServeConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("dir") {
		cfg.BuildDir = c.String("dir")
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.Bool("no-browser") {
		disabled := false
		cfg.OpenBrowser = &disabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveBuildDir returns the configured build directory, falling back
// to the fixed ui/build location next to the executable.
func resolveBuildDir(cfg *config.Config) (string, error) {
	if cfg.BuildDir != "" {
		return cfg.BuildDir, nil
	}
	return assets.Resolve()
}

// sessionHistory bundles the optional history store so the serve path
// can stay linear. A nil db means history is off or unavailable; every
// method degrades to a no-op then.
type sessionHistory struct {
	db     *storage.DB
	logger *slog.Logger
}

// openHistory opens the history database. Any failure downgrades to a
// warning: serving never depends on history.
func openHistory(cfg *config.Config, logger *slog.Logger) *sessionHistory {
	h := &sessionHistory{logger: logger}
	if !cfg.HistoryEnabled() {
		return h
	}

	db, err := storage.InitDB(storage.Config{
		DatabasePath: cfg.History.DatabasePath,
		LogLevel:     "silent",
	})
	if err != nil {
		logger.Warn("serve history unavailable", "error", err)
		return h
	}
	h.db = db
	return h
}

func (h *sessionHistory) start(port int, buildDir string) *storage.Session {
	if h.db == nil {
		return nil
	}

	session := &storage.Session{
		StartedAt: time.Now(),
		Port:      port,
		BuildDir:  buildDir,
	}
	if err := h.db.StartSession(session); err != nil {
		h.logger.Warn("failed to record session start", "error", err)
		return nil
	}
	return session
}

func (h *sessionHistory) finish(session *storage.Session, requests, bytesSent int64, clean bool) {
	if h.db == nil || session == nil {
		return
	}
	if err := h.db.FinishSession(session.ID, time.Now(), requests, bytesSent, clean); err != nil {
		h.logger.Warn("failed to record session end", "error", err)
	}
}

func (h *sessionHistory) close() {
	if h.db == nil {
		return
	}
	if err := h.db.Close(); err != nil {
		h.logger.Warn("failed to close history database", "error", err)
	}
}
