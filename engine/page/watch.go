package page

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Update is delivered by Watch after the page file changes.
type Update struct {
	Document *Document
	Err      error
}

// reloadDelay coalesces the burst of events editors emit for one save.
const reloadDelay = 50 * time.Millisecond

// Watch re-parses path whenever it is written, created or renamed into place,
// and passes the result to onChange. The parent directory is watched so that
// editors that save by rename are followed. Watch blocks until ctx is done.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the page file
//   - logger: logger for watcher errors (nil discards)
//   - onChange: receives every reload, called from the watcher goroutine
//
// Returns:
//   - error: nil when ctx is cancelled, otherwise the watcher setup error
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(Update)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("page: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("page: watch %s: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("page: watch %s: %w", path, err)
	}
	logger.Debug("watching page", "path", abs)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			doc, err := Load(abs)
			if err != nil {
				logger.Warn("page reload failed", "path", abs, "error", err)
			} else {
				logger.Info("page reloaded", "path", abs, "sections", doc.Sections(), "points", doc.Points)
			}
			onChange(Update{Document: doc, Err: err})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("page watcher error", "error", err)
		}
	}
}
