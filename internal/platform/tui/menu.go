package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/voice-snake/internal/config"
	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
)

type menuItemKind int

const (
	menuItemPlay menuItemKind = iota
	menuItemSpeed
	menuItemScores
	menuItemQuit
)

// menuItem is one row of the start menu.
type menuItem struct {
	kind menuItemKind
	mode snake.Mode // For menuItemPlay
}

// MenuModel is the Bubble Tea model for the start menu.
type MenuModel struct {
	items          []menuItem
	cursor         int
	speed          int // Index into config.SpeedPresets
	width          int
	height         int
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	selected       *snake.Mode // Set when user starts a game
	openScoreboard bool
}

// NewMenuModel creates the start menu. The voice mode is only offered when
// a voice controller is available.
func NewMenuModel(cfg core.RuntimeConfig, speed config.SpeedPreset, voiceAvailable bool) MenuModel {
	items := []menuItem{{kind: menuItemPlay, mode: snake.ModeKeyboard}}
	if voiceAvailable {
		items = append(items, menuItem{kind: menuItemPlay, mode: snake.ModeVoice})
	}
	items = append(items,
		menuItem{kind: menuItemSpeed},
		menuItem{kind: menuItemScores},
		menuItem{kind: menuItemQuit},
	)

	speedIdx := 1 // normal
	for i, p := range config.SpeedPresets {
		if p == speed {
			speedIdx = i
		}
	}

	return MenuModel{
		items:     items,
		speed:     speedIdx,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)
	item := m.items[m.cursor]

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionLeft:
		if item.kind == menuItemSpeed {
			m.speed = (m.speed + len(config.SpeedPresets) - 1) % len(config.SpeedPresets)
		}

	case MenuActionRight:
		if item.kind == menuItemSpeed {
			m.speed = (m.speed + 1) % len(config.SpeedPresets)
		}

	case MenuActionSelect:
		switch item.kind {
		case menuItemPlay:
			mode := item.mode
			m.selected = &mode
			return m, tea.Quit
		case menuItemSpeed:
			m.speed = (m.speed + 1) % len(config.SpeedPresets)
		case menuItemScores:
			m.openScoreboard = true
			return m, tea.Quit
		case menuItemQuit:
			m.quitting = true
			return m, tea.Quit
		}

	case MenuActionScores:
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("S N A K E", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Eat, grow, don't bite yourself", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+m.itemLabel(item), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Left/Right: Speed  |  Enter: Select  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

func (m MenuModel) itemLabel(item menuItem) string {
	switch item.kind {
	case menuItemPlay:
		if item.mode == snake.ModeVoice {
			return "Play with voice"
		}
		return "Play"
	case menuItemSpeed:
		return fmt.Sprintf("Speed: < %s >", m.Speed())
	case menuItemScores:
		return "High scores"
	default:
		return "Quit"
	}
}

// Selected returns the mode to start, or nil if none was chosen.
func (m MenuModel) Selected() *snake.Mode {
	return m.selected
}

// Speed returns the currently chosen speed preset.
func (m MenuModel) Speed() config.SpeedPreset {
	return config.SpeedPresets[m.speed]
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Mode            snake.Mode
	Speed           config.SpeedPreset
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the start menu and returns the selection result.
func RunMenu(cfg core.RuntimeConfig, speed config.SpeedPreset, voiceAvailable bool) (MenuResult, error) {
	model := NewMenuModel(cfg, speed, voiceAvailable)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg, Speed: speed}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Speed: speed, Quit: true}, nil
	}

	result := MenuResult{
		Config: m.Config(),
		Speed:  m.Speed(),
	}

	switch {
	case m.WantsScoreboard():
		result.WantsScoreboard = true
	case m.Selected() != nil:
		result.Mode = *m.Selected()
	default:
		result.Quit = true
	}

	return result, nil
}
