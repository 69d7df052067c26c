package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands each successfully
// validated config to apply. Invalid edits are logged and skipped. It blocks
// until ctx is done.
//
// The parent directory is watched rather than the file so that editors which
// replace the file via rename keep being noticed.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(*LoadResult)) error {
	if logger == nil {
		logger = slog.Default()
	}
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("config file event", "op", ev.Op.String(), "file", ev.Name)
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			timerCh = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-timerCh:
			timerCh = nil
			res, err := LoadFromPath(target)
			if err != nil {
				logger.Warn("config reload failed; keeping previous config", "error", err)
				continue
			}
			logger.Info("config reloaded", "file", target)
			apply(res)
		}
	}
}
