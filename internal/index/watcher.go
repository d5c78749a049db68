package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when WatchOptions.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// ChangeCallback receives the root-relative paths that changed during one
// quiet period, sorted and without duplicates.
type ChangeCallback func(changed []string)

// WatchOptions filters the events Watch reacts to.
type WatchOptions struct {
	Debounce time.Duration
	// Relevant reports whether a file name affects the menu tree. Nil
	// means every file does.
	Relevant func(name string) bool
	// Skip reports whether a directory name is excluded from watching.
	Skip func(name string) bool
}

// Watch starts an fsnotify watcher on the tree root and batches change
// events until ctx is cancelled. cb (if non-nil) is called once per batch.
//
// New directories created at runtime are automatically added to the watch
// list. Removals and renames always count as changes since the old path can
// no longer be inspected.
func Watch(ctx context.Context, root string, opts WatchOptions, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root, opts.Skip); err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Duration("debounce", debounce))

	// flushTimer fires once the tree has been quiet for debounce.
	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	pending := make(map[string]struct{})

	mark := func(abs string) {
		rel, relErr := filepath.Rel(root, abs)
		if relErr != nil {
			return
		}
		pending[filepath.ToSlash(rel)] = struct{}{}
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			flushTimer, flushCh = nil, nil
			logger.Debug("watcher: tree changed", slog.Int("paths", len(changed)))
			if cb != nil {
				cb(changed)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name
			name := filepath.Base(absPath)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if opts.Skip != nil && opts.Skip(name) {
						continue
					}
					if addErr := addDirsRecursive(w, absPath, opts.Skip); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					mark(absPath)
					continue
				}
			}

			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				mark(absPath)
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if opts.Relevant == nil || opts.Relevant(name) {
					mark(absPath)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its non-skipped subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skip != nil && skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
