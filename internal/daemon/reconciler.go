package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/splittile/internal/platform"
	"github.com/1broseidon/splittile/internal/tiling"
)

// WindowLister returns the ids of the client windows that currently exist.
type WindowLister func() ([]platform.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically compares the tiled windows against the window
// system. It posts WindowDestroyed for tiled windows that no longer exist and
// WindowCreated for tileable windows that are not tiled, which covers events
// overwritten in the mailbox.
type Reconciler struct {
	interval     time.Duration
	status       func() *Status
	listWindows  WindowLister
	listTileable WindowLister
	post         func(Event)
	logger       *slog.Logger
}

// NewReconciler creates a new reconciler. status is usually
// Orchestrator.Status and post is usually Mailbox.Post. listWindows returns
// every existing client; listTileable, if non-nil, returns the clients that
// should be tiled.
func NewReconciler(cfg ReconcilerConfig, status func() *Status, listWindows, listTileable WindowLister, post func(Event)) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:     interval,
		status:       status,
		listWindows:  listWindows,
		listTileable: listTileable,
		post:         post,
		logger:       logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass and returns the events it
// posted.
func (r *Reconciler) reconcile() (posted []Event) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	st := r.status()
	if st == nil {
		return nil
	}
	tiled := make(map[platform.WindowID]bool, len(st.Windows))
	for _, wid := range st.Windows {
		tiled[wid] = true
	}

	if len(st.Windows) > 0 {
		actual, err := r.listWindows()
		if err != nil {
			r.logger.Error("reconciler: failed to list windows", "error", err)
			return posted
		}
		exists := make(map[platform.WindowID]bool, len(actual))
		for _, wid := range actual {
			exists[wid] = true
		}
		// A root leaf cannot be removed, so a vanished sole window would be
		// reported again on every pass.
		soleLeaf := st.Tree != nil && st.Tree.Kind == tiling.KindWindow.String()
		for _, wid := range st.Windows {
			if exists[wid] {
				continue
			}
			if soleLeaf {
				r.logger.Debug("reconciler: sole tiled window no longer exists", "window", FormatWindowID(wid))
				continue
			}
			r.logger.Info("reconciler: tiled window no longer exists", "window", FormatWindowID(wid))
			posted = append(posted, WindowDestroyed(wid))
		}
	}

	if r.listTileable != nil {
		tileable, err := r.listTileable()
		if err != nil {
			r.logger.Error("reconciler: failed to list tileable windows", "error", err)
		} else {
			for _, wid := range tileable {
				if tiled[wid] {
					continue
				}
				r.logger.Info("reconciler: untiled window found", "window", FormatWindowID(wid))
				posted = append(posted, WindowCreated(wid))
			}
		}
	}

	// The mailbox keeps only the last event; the rest are picked up on
	// later passes.
	for _, ev := range posted {
		r.post(ev)
	}
	return posted
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
