package snake

import "slices"

// Snapshot captures the complete engine state for rendering, determinism
// testing and replay. It shares no memory with the engine.
type Snapshot struct {
	GridW      int
	GridH      int
	Body       []Cell // Head at index 0
	Food       Cell
	Dir        Direction
	Pending    Direction
	HasPending bool
	Score      int
	Ticks      int
	Restarts   int
	State      State
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		GridW:      e.gridW,
		GridH:      e.gridH,
		Body:       slices.Clone(e.body),
		Food:       e.food,
		Dir:        e.direction,
		Pending:    e.pending,
		HasPending: e.hasPending,
		Score:      e.score,
		Ticks:      e.ticks,
		Restarts:   e.restarts,
		State:      e.state,
	}
}

// Head returns the head cell, or (-1, -1) for an empty snapshot.
func (s Snapshot) Head() Cell {
	if len(s.Body) == 0 {
		return Cell{X: -1, Y: -1}
	}
	return s.Body[0]
}

// Len returns the snake length.
func (s Snapshot) Len() int {
	return len(s.Body)
}

// Occupies reports whether the snake covers c.
func (s Snapshot) Occupies(c Cell) bool {
	return slices.Contains(s.Body, c)
}
