package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the loaded configuration.
const (
	EnvCellSize       = "SNAKE_CELL_SIZE"
	EnvInitialSize    = "SNAKE_INITIAL_SIZE"
	EnvTickMS         = "SNAKE_TICK_MS"
	EnvWidth          = "SNAKE_WIDTH"
	EnvHeight         = "SNAKE_HEIGHT"
	EnvVoiceSource    = "SNAKE_VOICE_SOURCE"
	EnvVoiceAddr      = "SNAKE_VOICE_ADDR"
	EnvVoiceThreshold = "SNAKE_VOICE_THRESHOLD"
	EnvDB             = "SNAKE_DB"
	EnvLogLevel       = "SNAKE_LOG_LEVEL"
)

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any SNAKE_* variables that are set.
func ApplyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvCellSize, &cfg.Stage.CellSize},
		{EnvInitialSize, &cfg.Stage.InitialSize},
		{EnvTickMS, &cfg.Stage.TickMS},
		{EnvWidth, &cfg.Stage.Width},
		{EnvHeight, &cfg.Stage.Height},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", v.key, err)
		}
		*v.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvVoiceSource, &cfg.Voice.Source},
		{EnvVoiceAddr, &cfg.Voice.Addr},
		{EnvDB, &cfg.Storage.Path},
		{EnvLogLevel, &cfg.Log.Level},
	}
	for _, v := range strs {
		if raw, ok := os.LookupEnv(v.key); ok {
			*v.dst = raw
		}
	}

	if raw, ok := os.LookupEnv(EnvVoiceThreshold); ok {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("config: %s must be a number: %w", EnvVoiceThreshold, err)
		}
		cfg.Voice.Threshold = f
	}
	return nil
}
