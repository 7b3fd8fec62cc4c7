package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events editors emit for one save.
const watchDebounce = 200 * time.Millisecond

// watchFiles calls onChange with the original path whenever one of files
// is written or recreated, until ctx is done. Parent directories are
// watched so atomic saves (write to temp, rename over) are seen. onChange
// runs on the watching goroutine, one call at a time.
func watchFiles(ctx context.Context, files []string, logger *log.Logger, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	wanted := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch %s: %w", f, err)
		}
		wanted[abs] = f
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", "path", dir)
	}

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			orig, ok := wanted[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			logger.Debug("file event", "path", orig, "op", ev.Op.String())
			pending[orig] = true
			fire = time.After(watchDebounce)

		case <-fire:
			fire = nil
			for path := range pending {
				delete(pending, path)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				onChange(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
