package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultConfig returns the default configuration. It matches the embedded
// defaults/snake.yaml.
func DefaultConfig() Config {
	return Config{
		Stage: StageConfig{
			Width:       0,
			Height:      0,
			CellSize:    10,
			InitialSize: 5,
			TickMS:      100,
		},
		Voice: VoiceConfig{
			Enabled:   true,
			Source:    "",
			Addr:      ":8765",
			Path:      "/predict",
			Threshold: 0.75,
			ReplayMS:  250,
			Buffer:    8,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.snake/snake.log",
		},
		Storage: StorageConfig{
			Path: "~/.snake/scores.db",
		},
	}
}
