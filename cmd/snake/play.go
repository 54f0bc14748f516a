package main

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/voice-snake/internal/config"
	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/platform/tui"
	"github.com/vovakirdan/voice-snake/internal/registry"
	"github.com/vovakirdan/voice-snake/internal/storage"
	"github.com/vovakirdan/voice-snake/internal/voice"
)

var (
	flagMode        string
	flagSpeed       string
	flagGridW       int
	flagGridH       int
	flagVoiceSource string
	flagVoiceFile   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play snake",
	Long: `Start playing. Without --mode a start menu lets you pick the mode
and speed; with --mode the game starts right away.

Controls:
  Arrows/WASD/hjkl - Steer
  P/Space          - Pause
  R                - Restart
  V                - Voice steering on/off
  B/Esc            - Back to menu (when paused)
  Ctrl+S           - Screenshot
  Q/Ctrl+C         - Quit

Speed options:
  slow   - 160ms per step
  normal - 100ms per step
  fast   - 70ms per step
  insane - 40ms per step

Voice sources:
  ws     - Websocket server the classifier connects to (default for voice mode)
  file   - Replay a recording of predictions (--voice-file)

Examples:
  snake play
  snake play --mode keyboard --speed fast
  snake play --mode voice
  snake play --mode voice --voice file --voice-file ./session.jsonl
  snake play --width 20 --height 12`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Start directly in mode: keyboard or voice")
	playCmd.Flags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast, insane")
	playCmd.Flags().IntVar(&flagGridW, "width", 0, "Grid width in cells (0 = fit terminal)")
	playCmd.Flags().IntVar(&flagGridH, "height", 0, "Grid height in cells (0 = fit terminal)")
	playCmd.Flags().StringVar(&flagVoiceSource, "voice", "", "Voice source (see 'snake sources')")
	playCmd.Flags().StringVar(&flagVoiceFile, "voice-file", "", "Recording for the file voice source")
}

// parseMode accepts the short and stored names of a mode.
func parseMode(s string) (snake.Mode, error) {
	switch s {
	case "keyboard", string(snake.ModeKeyboard):
		return snake.ModeKeyboard, nil
	case "voice", string(snake.ModeVoice):
		return snake.ModeVoice, nil
	}
	return "", fmt.Errorf("unknown mode %q (want keyboard or voice)", s)
}

// playSettings builds the engine settings from config and flags.
func playSettings() (snake.Settings, config.SpeedPreset, error) {
	speed := config.SpeedPreset(flagSpeed)
	if speed != "" {
		if err := config.ApplySpeedPreset(&appCfg, speed); err != nil {
			return snake.Settings{}, "", err
		}
	}

	settings, err := gridSettings(appCfg.Settings(), flagGridW, flagGridH)
	if err != nil {
		return snake.Settings{}, "", err
	}
	return settings, speed, nil
}

// gridSettings sizes the axes given on the command line and leaves the
// others as configured. An axis still at 0 is fitted to the terminal when
// the game starts, so full validation waits until both are known.
func gridSettings(settings snake.Settings, gridW, gridH int) (snake.Settings, error) {
	if gridW < 0 || gridH < 0 {
		return snake.Settings{}, fmt.Errorf("grid size must not be negative, got %dx%d", gridW, gridH)
	}
	if gridW > 0 {
		settings.SurfaceWidth = gridW * settings.CellSize
	}
	if gridH > 0 {
		settings.SurfaceHeight = gridH * settings.CellSize
	}
	if settings.SurfaceWidth > 0 && settings.SurfaceHeight > 0 {
		if err := settings.Validate(); err != nil {
			return snake.Settings{}, err
		}
	}
	return settings, nil
}

func runPlay(_ *cobra.Command, _ []string) error {
	var mode snake.Mode
	if flagMode != "" {
		m, err := parseMode(flagMode)
		if err != nil {
			return err
		}
		mode = m
	}

	settings, speed, err := playSettings()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	// Open score storage
	store, err := storage.Open(appCfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	// Voice is started for voice mode, or for the menu when a source is configured
	sourceName := flagVoiceSource
	if sourceName == "" {
		sourceName = appCfg.Voice.Source
	}
	if sourceName == "" && mode == snake.ModeVoice {
		sourceName = "ws"
	}

	var controller *voice.Controller
	if sourceName != "" && mode != snake.ModeKeyboard {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		controller, err = startVoice(ctx, sourceName, logger)
		if err != nil {
			return err
		}
		defer controller.Close()
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:    width,
		ScreenH:    height,
		TickPeriod: settings.TickPeriod,
		Seed:       flagSeed,
	}

	player := playerName()
	logger.Info("starting", "mode", mode, "speed", speed, "voice", sourceName, "config", appCfgSource)

	if mode == "" {
		return tui.RunSession(tui.SessionOptions{
			Settings: settings,
			Speed:    speed,
			Store:    store,
			Player:   player,
			Voice:    controller,
			Logger:   logger,
		}, cfg)
	}

	return tui.Run(tui.GameOptions{
		Mode:     mode,
		Settings: settings,
		Store:    store,
		Player:   player,
		Voice:    controller,
		Logger:   logger,
	}, cfg)
}

// startVoice creates the named source and feeds it into a new controller in
// the background. A source that fails later is logged and the game goes on
// with keyboard steering.
func startVoice(ctx context.Context, name string, logger *log.Logger) (*voice.Controller, error) {
	if name == "stdin" {
		return nil, fmt.Errorf("the stdin voice source cannot be used while the game owns the terminal; try 'snake simulate --voice stdin'")
	}

	if !registry.Exists(name) {
		return nil, fmt.Errorf("unknown voice source %q (run 'snake sources' to list them)", name)
	}

	src, err := registry.Create(name, registry.Options{
		Addr:     appCfg.Voice.Addr,
		Path:     appCfg.Voice.Path,
		File:     firstNonEmpty(flagVoiceFile, appCfg.Voice.File),
		Interval: appCfg.Voice.ReplayInterval(),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	controller := voice.NewController(appCfg.Voice.Threshold, appCfg.Voice.Buffer, logger)
	controller.SetEnabled(appCfg.Voice.Enabled)
	logger.Info("voice ready", "source", name, "threshold", controller.Threshold(), "enabled", controller.Enabled())

	go func() {
		if err := controller.Run(ctx, src); err != nil {
			logger.Error("voice source failed", "source", name, "err", err)
		}
	}()

	return controller, nil
}

// playerName returns the local user name recorded with each run.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
