package config

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReloadCallback runs after a new configuration is applied.
type ReloadCallback func(old, new *Config)

// ChangeRecord is one entry in the reload audit log.
type ChangeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Applied   bool      `json:"applied"`
	Error     string    `json:"error,omitempty"`
}

// HotReloadManager reloads the configuration when its file changes. Invalid
// configurations are rejected and the previous one stays in effect; every
// attempt lands in the audit log.
type HotReloadManager struct {
	mu sync.Mutex

	loader    *Loader
	current   *Config
	watcher   *FileWatcher
	callbacks []ReloadCallback
	changeLog []ChangeRecord

	logger *zap.Logger
}

// NewHotReloadManager creates a manager around an initial config and the file
// it came from.
func NewHotReloadManager(initial *Config, path string, logger *zap.Logger) *HotReloadManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HotReloadManager{
		loader:  NewLoader().WithConfigPath(path),
		current: initial,
		watcher: NewFileWatcher(path, 0, logger),
		logger:  logger.With(zap.String("component", "hot_reload")),
	}
}

// OnReload registers a callback run after each successful reload.
func (m *HotReloadManager) OnReload(cb ReloadCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// Start begins watching the config file.
func (m *HotReloadManager) Start(ctx context.Context) {
	m.watcher.OnChange(func(FileEvent) { m.Reload() })
	m.watcher.Start(ctx)
}

// Stop halts watching.
func (m *HotReloadManager) Stop() {
	m.watcher.Stop()
}

// Current returns the active configuration.
func (m *HotReloadManager) Current() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// ChangeLog returns a copy of the reload audit log, oldest first.
func (m *HotReloadManager) ChangeLog() []ChangeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChangeRecord, len(m.changeLog))
	copy(out, m.changeLog)
	return out
}

// Reload re-resolves the configuration and applies it if valid.
func (m *HotReloadManager) Reload() error {
	record := ChangeRecord{Timestamp: time.Now(), Source: "file"}

	cfg, err := m.loader.Load()
	if err != nil {
		record.Error = err.Error()
		m.mu.Lock()
		m.changeLog = append(m.changeLog, record)
		m.mu.Unlock()
		m.logger.Warn("config reload rejected, keeping previous", zap.Error(err))
		return err
	}

	m.mu.Lock()
	old := m.current
	m.current = cfg
	record.Applied = true
	m.changeLog = append(m.changeLog, record)
	callbacks := make([]ReloadCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(old, cfg)
	}
	m.logger.Info("config reloaded")
	return nil
}
