package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/splittile/internal/clients"
	"github.com/1broseidon/splittile/internal/config"
	"github.com/1broseidon/splittile/internal/daemon"
	"github.com/1broseidon/splittile/internal/hotkeys"
	"github.com/1broseidon/splittile/internal/ipc"
	"github.com/1broseidon/splittile/internal/platform"
	"github.com/1broseidon/splittile/internal/tiling"
)

// controller exposes the running daemon to the IPC server.
type controller struct {
	orch    *daemon.Orchestrator
	mailbox *daemon.Mailbox
	reload  func() (*config.LoadResult, error)
}

var _ ipc.Controller = (*controller)(nil)

func (c *controller) Status() *daemon.Status                  { return c.orch.Status() }
func (c *controller) MailboxStats() (posted, replaced uint64) { return c.mailbox.Stats() }
func (c *controller) Post(ev daemon.Event)                    { c.mailbox.Post(ev) }
func (c *controller) Reload() (*config.LoadResult, error)     { return c.reload() }

// liveConfig applies the parts of a reloaded config that take effect without
// a restart: ignore rules, require_title and log_level.
type liveConfig struct {
	filter *clients.Filter
	level  *slog.LevelVar
	server *ipc.Server
	logger *slog.Logger
}

func (l *liveConfig) apply(res *config.LoadResult) {
	cfg := res.Config
	l.filter.Update(cfg.Ignore, cfg.RequireTitle)
	l.level.Set(cfg.SlogLevel())
	if l.server != nil {
		l.server.SetConfigFiles(res.Files)
	}
	l.logger.Info("config applied",
		"files", res.Files,
		"ignored_classes", len(cfg.Ignore.Classes),
		"ignored_titles", len(cfg.Ignore.Titles),
		"log_level", cfg.SlogLevel().String())
}

func windowIDs(windows []platform.Window) []platform.WindowID {
	ids := make([]platform.WindowID, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	return ids
}

// seedLayout tiles the enumerated windows and points the focus cursor at
// the active window. An active window that was not tiled leaves focus unset.
func seedLayout(orch *daemon.Orchestrator, backend platform.Backend) ([]platform.Window, error) {
	windows, err := backend.Windows()
	if err != nil {
		return nil, err
	}
	orch.Seed(windowIDs(windows))
	if active, err := backend.ActiveWindow(); err == nil && active != 0 {
		orch.Handle(daemon.FocusChanged(active))
	}
	return windows, nil
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon",
		"Usage: splittile daemon [--config PATH]",
		"",
		"Tile the active monitor and keep it tiled until interrupted.")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/splittile/config.yaml)")
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	// Load configuration
	path := *configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded (hotkey: %s, reconcile: %ds)", cfg.ToggleOrientationHotkey, cfg.ReconcileInterval)

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	filter := clients.NewFilter(cfg.Ignore, cfg.RequireTitle)

	// Connect to display server
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display, filter)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	workArea, err := backend.Canvas()
	if err != nil {
		log.Fatalf("Failed to query work area: %v", err)
	}
	canvas, err := tiling.ApplyPadding(workArea, cfg.ScreenPadding)
	if err != nil {
		log.Fatalf("Invalid screen padding: %v", err)
	}
	log.Printf("Canvas %s (work area %s)", canvas, workArea)

	orch := daemon.NewOrchestrator(canvas, backend, logger)
	windows, err := seedLayout(orch, backend)
	if err != nil {
		log.Fatalf("Failed to enumerate windows: %v", err)
	}
	log.Printf("Tiled %d existing windows: %s", len(windows), describeWindows(windows))
	if focus, ok := orch.Focus(); ok {
		log.Printf("Focus starts at %s", daemon.FormatWindowID(focus))
	}

	mailbox := daemon.NewMailbox()

	// Window lifecycle and focus notifications
	if err := backend.Watch(orch.Status().Windows, platform.WindowEvents{
		Created:   func(id platform.WindowID) { mailbox.Post(daemon.WindowCreated(id)) },
		Destroyed: func(id platform.WindowID) { mailbox.Post(daemon.WindowDestroyed(id)) },
		Focused:   func(id platform.WindowID) { mailbox.Post(daemon.FocusChanged(id)) },
	}, logger); err != nil {
		log.Fatalf("Failed to watch windows: %v", err)
	}

	// Setup hotkey handler
	hotkeyHandler, err := hotkeys.NewHandler(backend)
	if err != nil {
		log.Fatalf("Failed to create hotkey handler: %v", err)
	}
	if err := hotkeyHandler.RegisterToggle(mailbox.Post, cfg.ToggleOrientationHotkey, cfg.AltToggleHotkey); err != nil {
		log.Fatalf("Failed to register hotkey: %v", err)
	}

	live := &liveConfig{filter: filter, level: level, logger: logger}
	reload := func() (*config.LoadResult, error) {
		res, err := config.LoadFromPath(path)
		if err != nil {
			return nil, err
		}
		live.apply(res)
		return res, nil
	}

	// Start IPC server
	ipcServer, err := ipc.NewServer(&controller{orch: orch, mailbox: mailbox, reload: reload})
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	live.server = ipcServer
	ipcServer.SetConfigFiles(res.Files)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := orch.Run(ctx, mailbox); err != nil {
			logger.Error("orchestrator stopped", "error", err)
		}
	}()

	if cfg.ReconcileInterval > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: time.Duration(cfg.ReconcileInterval) * time.Second,
			Logger:   logger,
		}, orch.Status, backend.ClientIDs, func() ([]platform.WindowID, error) {
			windows, err := backend.Windows()
			if err != nil {
				return nil, err
			}
			return windowIDs(windows), nil
		}, mailbox.Post)
		go reconciler.Run(ctx)
	}

	go func() {
		if err := config.Watch(ctx, path, logger, live.apply); err != nil {
			logger.Warn("config file watching disabled", "error", err)
		}
	}()

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				if _, err := reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				log.Println("Config reloaded successfully")

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down splittile daemon...")
				cancel()
				ipcServer.Stop()
				os.Exit(0)
			}
		}
	}()

	log.Println("splittile daemon started successfully")

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}

func describeWindows(windows []platform.Window) string {
	if len(windows) == 0 {
		return "none"
	}
	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = fmt.Sprintf("%s %q", daemon.FormatWindowID(w.ID), w.AppID)
	}
	return strings.Join(parts, ", ")
}
