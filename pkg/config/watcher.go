package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 500 * time.Millisecond

// Watch reloads the configuration whenever the file at path changes and hands
// the result to onChange. It watches the parent directory so editors that
// replace the file on save are still seen. Invalid files are logged and
// skipped. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	reload := func() {
		base, err := ReadFile(abs, Defaults())
		if err != nil {
			logger.Error("invalid configuration after change", zap.String("file", abs), zap.Error(err))
			return
		}
		logger.Info("configuration reloaded", zap.String("file", abs))
		onChange(FromEnv(base))
	}

	go func() {
		defer w.Close()
		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, reload)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("configuration hot reloading enabled", zap.String("file", abs))
	return nil
}
