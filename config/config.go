package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-pianoroll/editor"
)

// Config is the main configuration structure. The viewport persists across
// sessions but is never part of undo history.
type Config struct {
	Viewport        editor.Viewport `json:"viewport"`
	GridSnap        editor.GridSnap `json:"gridSnap"`
	Tempo           int             `json:"tempo,omitempty"`
	DefaultVelocity int             `json:"defaultVelocity,omitempty"`

	MIDIPort    string `json:"midiPort,omitempty"`
	MIDIChannel int    `json:"midiChannel,omitempty"`

	Palette string `json:"palette,omitempty"` // GPL palette file, empty = built-in
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Viewport:        editor.DefaultViewport(),
		GridSnap:        editor.SnapQuarter,
		Tempo:           120,
		DefaultVelocity: editor.DefaultVelocity,
		MIDIChannel:     1,
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// normalize repairs values a hand-edited config could break.
func (c *Config) normalize() {
	if c.Viewport.PixelsPerBeat <= 0 || c.Viewport.PixelsPerKey <= 0 {
		c.Viewport = editor.DefaultViewport()
	}
	if c.Tempo <= 0 {
		c.Tempo = 120
	}
	if c.DefaultVelocity <= 0 || c.DefaultVelocity > 127 {
		c.DefaultVelocity = editor.DefaultVelocity
	}
	if c.MIDIChannel < 1 || c.MIDIChannel > 16 {
		c.MIDIChannel = 1
	}
}
