// Package config provides YAML-based configuration loading for the snake
// game, with .env and environment overrides and speed presets.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/voice-snake/internal/games/snake"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config contains all configuration for the game.
type Config struct {
	Stage   StageConfig   `yaml:"stage"`
	Voice   VoiceConfig   `yaml:"voice"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// StageConfig defines the playing field and pace.
type StageConfig struct {
	Width       int `yaml:"width"`  // Surface width in pixels; 0 fits the terminal
	Height      int `yaml:"height"` // Surface height in pixels; 0 fits the terminal
	CellSize    int `yaml:"cell_size"`
	InitialSize int `yaml:"initial_size"`
	TickMS      int `yaml:"tick_ms"`
}

// VoiceConfig defines where voice predictions come from and how they are
// filtered.
type VoiceConfig struct {
	Enabled   bool    `yaml:"enabled"` // Obey voice from the start
	Source    string  `yaml:"source"`  // Registered source name; empty disables voice
	Addr      string  `yaml:"addr"`
	Path      string  `yaml:"path"`
	File      string  `yaml:"file"`
	Threshold float64 `yaml:"threshold"`
	ReplayMS  int     `yaml:"replay_ms"`
	Buffer    int     `yaml:"buffer"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
	File  string `yaml:"file"`  // Log file used while the TUI owns the terminal
}

// StorageConfig defines where scores are kept.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// TickPeriod returns the interval between ticks.
func (s StageConfig) TickPeriod() time.Duration {
	return time.Duration(s.TickMS) * time.Millisecond
}

// Settings converts the stage section into engine settings.
func (c Config) Settings() snake.Settings {
	return snake.Settings{
		SurfaceWidth:  c.Stage.Width,
		SurfaceHeight: c.Stage.Height,
		CellSize:      c.Stage.CellSize,
		InitialSize:   c.Stage.InitialSize,
		TickPeriod:    c.Stage.TickPeriod(),
	}
}

// ReplayInterval returns the pacing of replayed recordings.
func (v VoiceConfig) ReplayInterval() time.Duration {
	return time.Duration(v.ReplayMS) * time.Millisecond
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	s := c.Stage
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("%w: stage size must not be negative, got %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.CellSize < 1 {
		return fmt.Errorf("%w: stage.cell_size must be positive, got %d", ErrInvalid, s.CellSize)
	}
	if s.InitialSize < 1 {
		return fmt.Errorf("%w: stage.initial_size must be positive, got %d", ErrInvalid, s.InitialSize)
	}
	if s.TickMS <= 0 {
		return fmt.Errorf("%w: stage.tick_ms must be positive, got %d", ErrInvalid, s.TickMS)
	}
	if s.Width > 0 && s.Height > 0 {
		if err := c.Settings().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	v := c.Voice
	if v.Threshold <= 0 || v.Threshold > 1 {
		return fmt.Errorf("%w: voice.threshold must be in (0, 1], got %v", ErrInvalid, v.Threshold)
	}
	if v.ReplayMS < 0 {
		return fmt.Errorf("%w: voice.replay_ms must not be negative, got %d", ErrInvalid, v.ReplayMS)
	}
	if v.Buffer < 0 {
		return fmt.Errorf("%w: voice.buffer must not be negative, got %d", ErrInvalid, v.Buffer)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn or error, got %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// YAML renders c as a YAML document.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
