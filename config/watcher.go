package config

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileEvent is one observed change to a watched file.
type FileEvent struct {
	Path      string    `json:"path"`
	ModTime   time.Time `json:"mod_time"`
	Timestamp time.Time `json:"timestamp"`
}

// FileWatcher polls configuration files for modification-time changes and
// fires callbacks. Polling keeps the watcher dependency-free and works on
// filesystems without event support.
type FileWatcher struct {
	mu sync.Mutex

	path     string
	interval time.Duration

	running   bool
	cancel    context.CancelFunc
	callbacks []func(event FileEvent)
	lastMod   time.Time

	logger *zap.Logger
}

// NewFileWatcher creates a watcher for one file. Interval defaults to two
// seconds; nil logger falls back to a no-op logger.
func NewFileWatcher(path string, interval time.Duration, logger *zap.Logger) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		path:     path,
		interval: interval,
		logger:   logger.With(zap.String("component", "config_watcher")),
	}
}

// OnChange registers a change callback.
func (w *FileWatcher) OnChange(cb func(event FileEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins polling. Starting an already running watcher is a no-op.
func (w *FileWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	go w.poll(ctx)
	w.logger.Info("watching config file", zap.String("path", w.path))
}

// Stop halts polling.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.cancel()
	w.running = false
}

func (w *FileWatcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *FileWatcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = info.ModTime()
	}
	callbacks := make([]func(FileEvent), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	if !changed {
		return
	}
	event := FileEvent{Path: w.path, ModTime: info.ModTime(), Timestamp: time.Now()}
	w.logger.Debug("config file changed", zap.String("path", w.path))
	for _, cb := range callbacks {
		cb(event)
	}
}
