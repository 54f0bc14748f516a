package core

import "time"

// DefaultTickPeriod is the interval between two simulation ticks.
const DefaultTickPeriod = 100 * time.Millisecond

// RuntimeConfig contains configuration passed to the game when it is reset.
// The platform fills it from the terminal (or SSH PTY) and the CLI flags.
type RuntimeConfig struct {
	ScreenW    int           // Screen width in characters
	ScreenH    int           // Screen height in characters
	TickPeriod time.Duration // Interval between simulation ticks
	Seed       int64         // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:    80,
		ScreenH:    24,
		TickPeriod: DefaultTickPeriod,
		Seed:       0, // 0 means use current time in platform layer
	}
}

// TickRate returns the number of ticks per second implied by TickPeriod.
func (c RuntimeConfig) TickRate() int {
	if c.TickPeriod <= 0 {
		return int(time.Second / DefaultTickPeriod)
	}
	return int(time.Second / c.TickPeriod)
}

// GameState is the summary the platform needs after every tick.
type GameState struct {
	Score    int  // Score of the current run
	Best     int  // Best score seen in this process
	Restarts int  // Number of collisions so far
	Won      bool // Whether the grid has been filled
	Paused   bool // Whether the game is paused
}

// StepResult is returned by Game.Step after each simulation tick.
type StepResult struct {
	State GameState

	// Restarted is set when the tick ended a run by collision.
	Restarted bool
	// Scored is set when food was eaten on this tick.
	Scored bool

	// RunEnded is set when a run finished on this step: collision, filling
	// the grid, or an explicit restart. The Final fields describe that run.
	RunEnded    bool
	FinalScore  int
	FinalLength int
	FinalTicks  int
}
