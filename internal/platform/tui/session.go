package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/voice-snake/internal/config"
	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/storage"
	"github.com/vovakirdan/voice-snake/internal/voice"
)

// SessionOptions configures a menu driven session.
type SessionOptions struct {
	Settings      snake.Settings // Base settings; the menu speed overrides the tick period
	Speed         config.SpeedPreset
	Store         *storage.Store
	Player        string
	Voice         *voice.Controller // nil hides the voice mode
	Logger        *log.Logger
	ScreenshotDir string
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewGame
	viewScores
)

// SessionModel manages the full session flow: menu -> game -> menu, with the
// scoreboard reachable from the menu. It is the top-level model for both the
// local "play" command and SSH sessions.
type SessionModel struct {
	opts      SessionOptions
	config    core.RuntimeConfig
	sessionID string
	logger    *log.Logger
	view      sessionView
	menu      MenuModel
	game      *GameModel
	scores    *ScoreboardModel
	lastMode  snake.Mode
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions, cfg core.RuntimeConfig) SessionModel {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Speed == "" {
		opts.Speed = config.SpeedNormal
	}
	sessionID := uuid.NewString()

	return SessionModel{
		opts:      opts,
		config:    cfg,
		sessionID: sessionID,
		logger:    opts.Logger.With("session", sessionID),
		menu:      NewMenuModel(cfg, opts.Speed, opts.Voice != nil),
		lastMode:  snake.ModeKeyboard,
	}
}

// ID returns the unique id of this session.
func (m SessionModel) ID() string {
	return m.sessionID
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), waitForVoice(m.opts.Voice))
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height

	case voiceMsg:
		// Commands heard outside a game are dropped
		if m.view == viewGame && m.game != nil {
			m.game.applyVoice(voice.Command(msg))
		}
		return m, waitForVoice(m.opts.Voice)
	}

	switch m.view {
	case viewGame:
		return m.updateGame(msg)
	case viewScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	m.opts.Speed = m.menu.Speed()

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		scores := NewScoreboardModel(m.opts.Store, m.config.ScreenW, m.config.ScreenH)
		scores.embedded = true
		scores.SelectMode(m.lastMode)
		m.scores = &scores
		m.view = viewScores
		return m, scores.Init()

	case m.menu.Selected() != nil:
		return m.startGame(*m.menu.Selected())
	}

	return m, cmd
}

// startGame builds a game for mode at the chosen speed.
func (m SessionModel) startGame(mode snake.Mode) (tea.Model, tea.Cmd) {
	settings := m.opts.Settings
	if ms, ok := config.TickMSForPreset(m.opts.Speed); ok {
		settings.TickPeriod = time.Duration(ms) * time.Millisecond
	}

	cfg := m.config
	cfg.TickPeriod = settings.TickPeriod

	var controller *voice.Controller
	if mode == snake.ModeVoice {
		controller = m.opts.Voice
	}

	gm, err := NewGameModel(GameOptions{
		Mode:          mode,
		Settings:      settings,
		Store:         m.opts.Store,
		Player:        m.opts.Player,
		Voice:         controller,
		Logger:        m.logger,
		ScreenshotDir: m.opts.ScreenshotDir,
	}, cfg)
	if err != nil {
		m.logger.Error("cannot start game", "mode", mode, "err", err)
		m.menu = NewMenuModel(m.config, m.opts.Speed, m.opts.Voice != nil)
		return m, nil
	}

	m.logger.Info("game started", "mode", mode, "speed", m.opts.Speed, "player", m.opts.Player)
	m.game = &gm
	m.lastMode = mode
	m.view = viewGame
	return m, m.game.Init()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		m.game = nil
		return m.backToMenu()
	}

	return m, cmd
}

// updateScores handles updates when the scoreboard is shown.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if scores, ok := newModel.(ScoreboardModel); ok {
		m.scores = &scores
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.scores.IsGoingBack() {
		m.scores = nil
		return m.backToMenu()
	}

	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.view = viewMenu
	m.menu = NewMenuModel(m.config, m.opts.Speed, m.opts.Voice != nil)
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.view == viewGame && m.game != nil:
		return m.game.View()
	case m.view == viewScores && m.scores != nil:
		return m.scores.View()
	}
	return m.menu.View()
}

// RunSession runs the menu driven session in the local terminal.
func RunSession(opts SessionOptions, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(opts, cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
