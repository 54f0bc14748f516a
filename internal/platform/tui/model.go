package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/storage"
	"github.com/vovakirdan/voice-snake/internal/voice"
)

// helpHeight is the number of rows reserved under the field for key help.
const helpHeight = 1

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// GameOptions configures a game screen.
type GameOptions struct {
	Mode          snake.Mode
	Settings      snake.Settings
	Store         *storage.Store    // nil disables score saving
	Player        string            // Recorded with each run
	Voice         *voice.Controller // nil disables voice steering
	Logger        *log.Logger
	ScreenshotDir string // Defaults to ~/.snake/screenshots
}

// voiceMsg carries an accepted voice command into the Bubble Tea loop.
type voiceMsg voice.Command

// GameModel is the Bubble Tea model for playing one snake game.
type GameModel struct {
	id            uint64 // Stamped on every tick this model schedules
	game          *snake.Game
	screen        *core.Screen
	store         *storage.Store
	config        core.RuntimeConfig
	inputFrame    core.InputFrame
	gameState     core.GameState
	keyMapper     *KeyMapper
	help          help.Model
	voice         *voice.Controller
	logger        *log.Logger
	player        string
	screenshotDir string

	standalone bool // Owns the program: back quits, voice is awaited here
	quitting   bool
	backToMenu bool
}

// NewGameModel creates the game and sizes it for cfg.
// Invalid settings are returned as errors before any tick runs.
func NewGameModel(opts GameOptions, cfg core.RuntimeConfig) (GameModel, error) {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = opts.Settings.TickPeriod
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := help.New()
	h.Width = cfg.ScreenW

	m := GameModel{
		id:            nextGameID(),
		game:          snake.New(opts.Mode, opts.Settings),
		screen:        core.NewScreen(cfg.ScreenW, cfg.ScreenH-helpHeight),
		store:         opts.Store,
		config:        cfg,
		inputFrame:    core.NewInputFrame(),
		keyMapper:     NewKeyMapper(),
		help:          h,
		voice:         opts.Voice,
		logger:        logger,
		player:        opts.Player,
		screenshotDir: opts.ScreenshotDir,
	}

	if err := m.game.Reset(m.fieldConfig()); err != nil {
		return m, err
	}

	if m.store != nil {
		high, err := m.store.HighScore(m.game.ID())
		if err != nil {
			m.logger.Warn("could not load high score", "mode", m.game.ID(), "err", err)
		}
		m.game.SetBest(high)
	}
	if m.voice != nil {
		m.game.SetVoiceEnabled(m.voice.Enabled())
	}
	m.gameState = m.game.State()

	return m, nil
}

// fieldConfig is the runtime config seen by the game: the terminal minus
// the help line.
func (m GameModel) fieldConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = max(cfg.ScreenH-helpHeight, 0)
	return cfg
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	if m.standalone {
		return tea.Batch(tickCmd(m.id, m.config.TickPeriod), m.waitForVoice())
	}
	return tickCmd(m.id, m.config.TickPeriod)
}

// waitForVoice returns a command that waits for the next voice command.
func (m GameModel) waitForVoice() tea.Cmd {
	return waitForVoice(m.voice)
}

func waitForVoice(c *voice.Controller) tea.Cmd {
	if c == nil {
		return nil
	}
	commands, done := c.Commands(), c.Done()
	return func() tea.Msg {
		select {
		case cmd := <-commands:
			return voiceMsg(cmd)
		case <-done:
			return nil
		}
	}
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		// A tick from an earlier game in the same program must not start a
		// second loop
		if msg.Game != m.id {
			return m, nil
		}
		return m.handleTick()

	case voiceMsg:
		m.applyVoice(voice.Command(msg))
		if m.standalone {
			return m, m.waitForVoice()
		}
		return m, nil
	}

	return m, nil
}

// applyVoice steers the snake from an accepted voice command.
func (m *GameModel) applyVoice(cmd voice.Command) {
	if m.voice == nil || !m.voice.Enabled() {
		return
	}
	accepted := m.game.RequestDirection(cmd.Direction)
	m.logger.Debug("voice command", "label", cmd.Label, "score", cmd.Score, "applied", accepted)
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.IsScreenshot(msg) {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.abandonRun(storage.OutcomeQuit)
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case action.IsDirectional():
		m.game.Steer(action)
	case action == core.ActionToggleVoice:
		m.toggleVoice()
	case action == core.ActionBack:
		// Leaving mid-run needs a pause first
		if !m.gameState.Paused && !m.gameState.Won {
			return m, nil
		}
		m.abandonRun(storage.OutcomeQuit)
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}

	return m, nil
}

func (m *GameModel) toggleVoice() {
	if m.voice == nil {
		return
	}
	on := m.voice.Toggle()
	m.game.SetVoiceEnabled(on)
	m.logger.Info("voice steering toggled", "enabled", on)
}

// handleResize refits the field to the new window. The current run is
// recorded and a fresh one starts.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Width == m.config.ScreenW && msg.Height == m.config.ScreenH {
		return m, nil
	}

	m.abandonRun(storage.OutcomeRestart)

	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height-helpHeight)
	m.help.Width = msg.Width

	if err := m.game.Reset(m.fieldConfig()); err != nil {
		m.logger.Error("could not resize game", "err", err)
	}
	m.gameState = m.game.State()

	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if result.RunEnded {
		outcome := storage.OutcomeRestart
		switch {
		case result.Restarted:
			outcome = storage.OutcomeCollision
			m.logger.Info("collision, restarting",
				"score", result.FinalScore, "length", result.FinalLength, "ticks", result.FinalTicks)
		case result.State.Won:
			outcome = storage.OutcomeWin
			m.logger.Info("grid filled", "score", result.FinalScore, "ticks", result.FinalTicks)
		default:
			m.logger.Info("run restarted", "score", result.FinalScore)
		}
		m.saveRun(outcome, result.FinalScore, result.FinalLength, result.FinalTicks)
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.id, m.config.TickPeriod)
}

// abandonRun records the run in progress when the player leaves it.
func (m *GameModel) abandonRun(outcome string) {
	snap := m.game.Snapshot()
	if snap.Ticks == 0 || snap.State == snake.StateWon {
		return
	}
	m.saveRun(outcome, snap.Score, snap.Len(), snap.Ticks)
}

// saveRun stores a finished run. Runs without a score are not kept.
func (m *GameModel) saveRun(outcome string, score, length, ticks int) {
	if m.store == nil || score <= 0 {
		return
	}

	runID, err := m.store.SaveRun(storage.Run{
		Mode:    m.game.ID(),
		Player:  m.player,
		Score:   score,
		Length:  length,
		Ticks:   ticks,
		Outcome: outcome,
	})
	if err != nil {
		// Best-effort save, game continues regardless
		m.logger.Warn("could not save run", "err", err)
		return
	}
	m.logger.Debug("run saved", "run", runID, "score", score, "outcome", outcome)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := m.screenshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			m.logger.Warn("could not save screenshot", "err", err)
			return
		}
		dir = filepath.Join(home, ".snake", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("could not save screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "err", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keyMapper.Keys()))
}

// State returns the game summary after the last tick.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// Snapshot returns the engine state of the game.
func (m GameModel) Snapshot() snake.Snapshot {
	return m.game.Snapshot()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays a single game in the terminal until the player quits.
func Run(opts GameOptions, cfg core.RuntimeConfig) error {
	model, err := NewGameModel(opts, cfg)
	if err != nil {
		return err
	}
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err = p.Run()
	return err
}
