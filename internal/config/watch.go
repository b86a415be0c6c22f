package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/abelbrown/bookmarks/internal/logging"
)

// Watcher reloads the config file when it changes on disk and publishes
// each successfully parsed version on Updates.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	updates chan *Config
	done    chan struct{}
}

// NewWatcher watches the directory holding path, since editors commonly
// replace files by rename rather than writing in place.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		path = ConfigPath()
	}
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher: fsw,
		path:    path,
		updates: make(chan *Config, 1),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	defer close(w.updates)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Log error but keep watching
			logging.Warn("config watch error", "err", err)
		}
	}
}

// reload parses the file and publishes it, replacing any unread update.
func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		logging.Warn("config reload failed", "path", w.path, "err", err)
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// Truncated mid-save; the following write carries the content.
		return
	}
	cfg, err := Parse(data)
	if err != nil {
		logging.Warn("config reload failed", "path", w.path, "err", err)
		return
	}

	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	logging.Info("config reloaded", "path", w.path)
}

// Updates delivers reloaded configs. Closed after Close.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
