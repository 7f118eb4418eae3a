package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher calls back with the Go files changed below a directory, batching
// bursts of events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// NewWatcher watches root and every directory below it, skipping hidden and
// underscore directories the way the file finder does.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, errors.Errorf("watching %s: %w", root, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{watcher: fw, debounce: debounce, pending: map[string]bool{}}, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Relevant reports whether an event can change template diagnostics.
func Relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") {
		return false
	}
	return strings.HasSuffix(base, ".go") || base == ".ngtmpls.hcl" || base == ".ngtmpls.yaml"
}

// Run blocks until ctx is done, calling onChange with the sorted names of
// files changed in each burst.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string)) error {
	defer w.watcher.Close()

	fire := make(chan []string, 1)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !Relevant(event) {
				continue
			}
			zerolog.Ctx(ctx).Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("watcher detected change")
			w.schedule(ctx, event.Name, fire)

		case files := <-fire:
			onChange(ctx, files)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			zerolog.Ctx(ctx).Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, name string, fire chan<- []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		files := make([]string, 0, len(w.pending))
		for f := range w.pending {
			files = append(files, f)
		}
		w.pending = map[string]bool{}
		w.mu.Unlock()

		sort.Strings(files)
		select {
		case fire <- files:
		case <-ctx.Done():
		}
	})
}
