// snake is a terminal snake game that can be steered by voice.
//
// Usage:
//
//	snake play               - Start menu, then play
//	snake play --mode voice  - Play steered by a voice classifier
//	snake serve              - Start SSH server for remote play
//	snake scores [mode]      - Show high scores
//	snake simulate           - Run the engine headless and print the board
//	snake sources            - List voice input sources
//	snake config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.snake/config.yaml, ./configs/snake.yaml, built-in)
//	--env <path>        - .env file with SNAKE_* overrides (default: ./.env)
//	--db <path>         - Scores database
//	--seed <value>      - RNG seed for reproducible gameplay
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/voice-snake/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagEnvFile  string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string

	// Loaded by the root command before any subcommand runs
	appCfg       config.Config
	appCfgSource string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake in your terminal, steered by keys or by voice",
	Long: `Snake is a terminal snake game. Steer with the keyboard, or let a
speech command classifier steer for you by streaming its predictions
over a websocket, stdin or a recording.

Available commands:
  play      - Play (menu, keyboard or voice mode)
  serve     - Start SSH server for remote play
  scores    - View high scores
  simulate  - Run the engine headless
  sources   - List voice input sources
  config    - Print the effective configuration

Examples:
  snake play
  snake play --mode voice --voice ws
  snake play --speed fast --width 30 --height 15
  snake serve --ssh :2222
  snake scores voice`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env", ".env", "Path to .env file with SNAKE_* overrides")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig resolves the configuration: .env, then the config file, then
// SNAKE_* variables, then command line flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	cfg, source, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Storage.Path = flagDBPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	appCfg = cfg
	appCfgSource = source
	return nil
}

// newLogger builds the application logger. While the TUI owns the terminal
// logs go to the configured file; otherwise they go to stderr.
// The returned function closes the log file, if any.
func newLogger(toFile bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(appCfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}

	if toFile {
		path, err := config.ExpandHome(appCfg.Log.File)
		if err != nil {
			return nil, nil, err
		}
		if path == "" {
			w = io.Discard
		} else {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("cannot open log file: %w", err)
			}
			w = f
			closeFn = func() { f.Close() }
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake",
		Level:           level,
	})
	return logger, closeFn, nil
}
