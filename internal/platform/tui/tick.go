// Package tui provides the Bubble Tea integration for the snake game.
// It handles the terminal UI loop, input mapping, voice command delivery,
// score saving and the SSH server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/voice-snake/internal/core"
)

// TickMsg is sent to trigger a game simulation tick. Game is the id of the
// game model that scheduled it; a model ignores ticks carrying another id.
type TickMsg struct {
	Time time.Time
	Game uint64
}

var gameSeq atomic.Uint64

// nextGameID returns a process-wide unique game model id.
func nextGameID() uint64 {
	return gameSeq.Add(1)
}

// tickCmd returns a Bubble Tea command that sends one tick for game after
// period.
func tickCmd(game uint64, period time.Duration) tea.Cmd {
	if period <= 0 {
		period = core.DefaultTickPeriod
	}
	return tea.Tick(period, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Game: game}
	})
}
