package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"hourglass/internal/ui/preferences"
)

// SettingsWatcher reloads settings whenever the YAML file changes on disk.
type SettingsWatcher struct {
	notify *fsnotify.Watcher
	done   chan struct{}
}

// WatchSettings watches the settings file for appName and invokes onChange
// with freshly loaded settings after every write.
func WatchSettings(appName string, logger *zap.Logger, onChange func(preferences.Settings)) (*SettingsWatcher, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}

	// Editors and SaveSettings replace the file; a watch placed on the file
	// itself is dropped on replace, so the directory is watched instead.
	if err := notify.Add(filepath.Dir(configPath)); err != nil {
		_ = notify.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	watcher := &SettingsWatcher{notify: notify, done: make(chan struct{})}
	go watcher.run(appName, configPath, logger, onChange)
	return watcher, nil
}

// Close stops watching.
func (watcher *SettingsWatcher) Close() error {
	close(watcher.done)
	return watcher.notify.Close()
}

func (watcher *SettingsWatcher) run(appName, configPath string, logger *zap.Logger, onChange func(preferences.Settings)) {
	for {
		select {
		case <-watcher.done:
			return
		case event, ok := <-watcher.notify.Events:
			if !ok {
				return
			}
			if event.Name != configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settings, err := LoadSettings(appName)
			if err != nil {
				logger.Warn("reload settings", zap.Error(err))
				continue
			}
			onChange(settings)
		case err, ok := <-watcher.notify.Errors:
			if !ok {
				return
			}
			logger.Warn("settings watcher", zap.Error(err))
		}
	}
}
