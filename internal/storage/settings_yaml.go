package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"hourglass/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	DurationSeconds  int     `yaml:"duration_seconds"`
	Loop             bool    `yaml:"loop"`
	LoopLimit        int     `yaml:"loop_limit"`
	IdlePauseEnabled bool    `yaml:"idle_pause_enabled"`
	IdlePauseMinutes int     `yaml:"idle_pause_minutes"`
	SoundEnabled     bool    `yaml:"sound_enabled"`
	Volume           float64 `yaml:"volume"`
	OverlayOpacity   float64 `yaml:"overlay_opacity"`
	Fullscreen       bool    `yaml:"fullscreen"`
	Autostart        bool    `yaml:"autostart"`
	LogLevel         string  `yaml:"log_level"`
	LogFormat        string  `yaml:"log_format"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		DurationSeconds:  int(settings.Duration / time.Second),
		Loop:             settings.Loop,
		LoopLimit:        settings.LoopLimit,
		IdlePauseEnabled: settings.IdlePauseEnabled,
		IdlePauseMinutes: int(settings.IdlePauseAfter / time.Minute),
		SoundEnabled:     settings.SoundEnabled,
		Volume:           settings.Volume,
		OverlayOpacity:   settings.OverlayOpacity,
		Fullscreen:       settings.Fullscreen,
		Autostart:        settings.Autostart,
		LogLevel:         settings.LogLevel,
		LogFormat:        settings.LogFormat,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.DurationSeconds > 0 {
		settings.Duration = time.Duration(fileData.DurationSeconds) * time.Second
	}
	if fileData.LoopLimit >= 0 {
		settings.LoopLimit = fileData.LoopLimit
	}
	if fileData.IdlePauseMinutes > 0 {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseMinutes) * time.Minute
	}
	if fileData.Volume >= 0 && fileData.Volume <= 1 {
		settings.Volume = fileData.Volume
	}
	if fileData.OverlayOpacity >= 0.7 && fileData.OverlayOpacity <= 0.95 {
		settings.OverlayOpacity = fileData.OverlayOpacity
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	if fileData.LogFormat != "" {
		settings.LogFormat = fileData.LogFormat
	}

	settings.Loop = fileData.Loop
	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
	settings.SoundEnabled = fileData.SoundEnabled
	settings.Fullscreen = fileData.Fullscreen
	settings.Autostart = fileData.Autostart
}
