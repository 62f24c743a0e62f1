package config

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/johan-st/shopdash/internal/debounce"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads the config when its file changes.
type Watcher struct {
	config    *Config
	watcher   *fsnotify.Watcher
	debounce  *debounce.Debouncer
	logger    *log.Logger
	callbacks []func(*Config)
	stop      chan struct{}
	mu        sync.RWMutex
}

func NewWatcher(config *Config, logger *log.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		config:   config,
		watcher:  watcher,
		debounce: debounce.New(reloadDelay),
		logger:   logger.WithPrefix("config"),
		stop:     make(chan struct{}),
	}, nil
}

// OnReload registers a callback run after every successful reload.
func (w *Watcher) OnReload(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start watches the config file. It is a no-op for default configs.
func (w *Watcher) Start() error {
	path := w.config.Path()
	if path == "" {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return err
	}
	go w.watch()
	return nil
}

func (w *Watcher) Stop() {
	close(w.stop)
	w.debounce.Cancel()
	w.watcher.Close()
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.debounce.After(event.Name, func(string) { w.reload() })
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch failed", "err", err)

		case <-w.stop:
			return
		}
	}
}

// reload re-reads the config and runs the callbacks.
func (w *Watcher) reload() {
	if err := w.config.Reload(); err != nil {
		w.logger.Error("reload failed, keeping previous config", "err", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.config.Path())

	w.mu.RLock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(w.config)
	}
}
