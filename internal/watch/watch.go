// Package watch re-runs a build when Keel sources change on disk.
package watch

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gopkg.keel-lang.org/keelc/internal/exc"
	kfs "gopkg.keel-lang.org/keelc/internal/fs"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// DefaultDelay is how long the watcher waits for a burst of events to settle
// before it calls the change handler.
const DefaultDelay = 200 * time.Millisecond

type Option func(w *Watcher)

func OptionWithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func OptionWithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// Watcher calls a handler each time Keel sources below a set of directories
// are created, written, removed or renamed. Events are coalesced so that one
// save produces one call.
type Watcher struct {
	dirs   []string
	delay  time.Duration
	logger *slog.Logger
}

func New(dirs []string, opts ...Option) *Watcher {
	w := &Watcher{dirs: dirs, delay: DefaultDelay}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w
}

// Run watches until ctx is done. onChange is never called concurrently with
// itself. The returned error is nil when ctx ends the watch.
func (self *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exc.WrapUnknown(exc.Location{}, err)
	}
	defer watcher.Close()

	for _, dir := range self.dirs {
		if err := self.addTree(watcher, dir); err != nil {
			return err
		}
	}
	self.logger.Info("watching for changes", slog.Any("dirs", self.dirs))

	timer := time.NewTimer(self.delay)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := self.addTree(watcher, event.Name); err != nil {
						self.logger.Warn("cannot watch directory", slog.String("dir", event.Name), slog.Any("error", err))
					}
					continue
				}
			}
			if kfs.KindOf(event.Name) == idl.FileKindNone {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			self.logger.Debug("source changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(self.delay)
		case <-timer.C:
			onChange(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			self.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

// addTree watches dir and every directory below it.
func (self *Watcher) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return exc.Wrap(exc.Location{URI: p}, exc.CodeFileNotFound, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return exc.WrapUnknown(exc.Location{URI: p}, err)
		}
		return nil
	})
}
