// Package watcher reports edits to a single configuration file.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iiasa/ixmp/internal/log"
)

// relevantOps are the operations that can alter the file's content. An
// atomic save shows up as Create (or Rename) on the target name.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Config holds watcher options.
type Config struct {
	// Path is the file to watch. Its directory must exist.
	Path string
	// Debounce is the quiet period that ends a burst of edits.
	Debounce time.Duration
}

// DefaultConfig returns the options used by "ixmp config watch".
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: 250 * time.Millisecond}
}

// Watcher signals once per burst of edits to its file.
type Watcher struct {
	cfg    Config
	fs     *fsnotify.Watcher
	signal chan struct{}

	mu    sync.Mutex
	timer *time.Timer

	stopOnce sync.Once
	stopErr  error
}

// New creates a watcher for cfg.Path. Nothing is observed until Start.
func New(cfg Config) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	cfg.Path = filepath.Clean(cfg.Path)
	return &Watcher{cfg: cfg, fs: fs, signal: make(chan struct{}, 1)}, nil
}

// Start subscribes to the file's parent directory and returns the signal
// channel. Watching the directory keeps the watch alive across renames.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.cfg.Path)
	if err := w.fs.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "Watching", "path", w.cfg.Path, "debounce", w.cfg.Debounce)

	go w.run()
	return w.signal, nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		w.stopErr = w.fs.Close()
	})
	return w.stopErr
}

// run drains fsnotify until Close shuts both of its channels.
func (w *Watcher) run() {
	events, errs := w.fs.Events, w.fs.Errors
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&relevantOps != 0 && filepath.Clean(ev.Name) == w.cfg.Path {
				w.touch()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err, "path", w.cfg.Path)
		}
	}
}

// touch restarts the quiet period.
func (w *Watcher) touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		w.timer = time.AfterFunc(w.cfg.Debounce, w.fire)
		return
	}
	w.timer.Reset(w.cfg.Debounce)
}

// fire delivers at most one pending signal.
func (w *Watcher) fire() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}
