package config

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce lets a burst of writes settle before the file is re-read
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes and delivers the result on
// Updates. Files that fail to load are reported and skipped.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	getenv  func(string) string
	stdout  io.Writer
	stderr  io.Writer
	updates chan *Config
}

// NewWatcher creates a watcher for the config file at path
func NewWatcher(path string, getenv func(string) string, stdout, stderr io.Writer) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: fsWatcher,
		path:    absPath,
		getenv:  getenv,
		stdout:  stdout,
		stderr:  stderr,
		updates: make(chan *Config, 1),
	}, nil
}

// Updates delivers each successfully reloaded config. Only the latest
// unread config is kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start begins watching. The directory is watched rather than the file so
// editors that replace the file on save are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.logError("failed to watch config dir %s: %v", dir, err)
		return err
	}
	w.logInfo("watching config: %s", w.path)

	go w.eventLoop(ctx)
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := loadFile(w.path, w.getenv)
	if err != nil {
		w.logError("config not reloaded: %v", err)
		return
	}
	w.logInfo("config reloaded: %s", w.path)

	// replace any update the reader has not picked up yet
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
