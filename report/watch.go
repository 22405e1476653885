package report

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// Watch blocks until ctx is canceled, calling onChange (debounced) whenever
// one of the given files changes on disk. The parent directories are watched
// rather than the files themselves, so editors that replace files by rename
// keep triggering. Rotating config backups are ignored.
func Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "resolve watch path %s", p)
		}
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrapf(err, "watch %s", p)
		}
		watched[abs] = true
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var mu sync.Mutex
	var timer *time.Timer
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, onChange)
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] || isBackupFile(abs) {
				continue
			}
			logger.Infow("change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

// isBackupFile reports whether path is a rotating backup or an editor
// scratch file that should never trigger a rerun.
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range []string{".back1", ".back2", ".back3", ".tmp", ".swp", "~"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
