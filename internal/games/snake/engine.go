// Package snake implements the snake game: a deterministic grid engine and a
// terminal game that drives and draws it. The engine has no knowledge of
// keys, voice, timers or terminals.
package snake

import (
	"math/rand"
	"slices"
	"sync"
	"time"
)

// State is the engine's lifecycle state.
// A collision restarts the run inside the same Tick call, so the engine is
// never observed between runs.
type State int

const (
	StateRunning State = iota
	StateWon           // The snake covers the whole grid; Tick is a no-op until Restart.
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWon:
		return "won"
	default:
		return "unknown"
	}
}

// TickResult reports what a single Tick did.
type TickResult struct {
	// Restarted is set when the move collided and the engine reset itself.
	Restarted bool
	// Scored is set when the head landed on the food.
	Scored bool
	// Won is set while the snake fills the grid.
	Won bool

	// Score, Length and Ticks describe the run after this tick, or the run
	// that just ended when Restarted is set.
	Score  int
	Length int
	Ticks  int
}

// Engine owns the grid, the snake, the food, the heading and the score.
// All methods are safe for concurrent use; Tick calls are expected to be
// serialized by a single scheduler.
type Engine struct {
	mu sync.Mutex

	settings Settings
	gridW    int
	gridH    int
	rng      *rand.Rand

	body     []Cell // Head at index 0
	occupied map[Cell]struct{}
	food     Cell

	direction  Direction
	pending    Direction // Last accepted request since the previous tick
	hasPending bool

	score    int
	ticks    int // Moves made in the current run
	restarts int // Collisions since construction
	state    State
}

// NewEngine validates settings and builds the initial run.
// A nil rng is replaced with a time-seeded one.
func NewEngine(settings Settings, rng *rand.Rand) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		settings: settings,
		gridW:    settings.GridWidth(),
		gridH:    settings.GridHeight(),
		rng:      rng,
	}
	e.reset()
	return e, nil
}

// reset lays the snake out along row 0 with the head rightmost, heading
// right, and spawns the first food.
func (e *Engine) reset() {
	size := e.settings.InitialSize

	e.body = make([]Cell, 0, size)
	e.occupied = make(map[Cell]struct{}, size)
	for x := size - 1; x >= 0; x-- {
		c := Cell{X: x, Y: 0}
		e.body = append(e.body, c)
		e.occupied[c] = struct{}{}
	}

	e.direction = DirRight
	e.pending = DirRight
	e.hasPending = false
	e.score = 0
	e.ticks = 0
	e.state = StateRunning

	if !e.spawnFood() {
		// InitialSize == grid cells: nothing left to eat.
		e.state = StateWon
	}
}

// spawnFood places food uniformly over the free cells.
// Returns false when the snake occupies the whole grid.
func (e *Engine) spawnFood() bool {
	free := e.gridW*e.gridH - len(e.body)
	if free <= 0 {
		e.food = Cell{X: -1, Y: -1}
		return false
	}

	emptyCells := make([]Cell, 0, free)
	for y := range e.gridH {
		for x := range e.gridW {
			c := Cell{X: x, Y: y}
			if _, taken := e.occupied[c]; !taken {
				emptyCells = append(emptyCells, c)
			}
		}
	}

	e.food = emptyCells[e.rng.Intn(len(emptyCells))]
	return true
}

// RequestDirection records d as the heading for the next tick.
// A reversal onto the snake's own neck is ignored and reported as false.
// Later requests before the same tick replace earlier ones.
func (e *Engine) RequestDirection(d Direction) bool {
	if !d.Valid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.body) > 1 && d == e.direction.Opposite() {
		return false
	}
	e.pending = d
	e.hasPending = true
	return true
}

// Tick advances the snake by one cell.
func (e *Engine) Tick() TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateWon {
		return TickResult{Won: true, Score: e.score, Length: len(e.body), Ticks: e.ticks}
	}

	// Apply buffered direction
	if e.hasPending {
		e.direction = e.pending
		e.hasPending = false
	}

	head := e.body[0].Step(e.direction)
	eats := head == e.food

	if e.collides(head, eats) {
		ended := TickResult{
			Restarted: true,
			Score:     e.score,
			Length:    len(e.body),
			Ticks:     e.ticks,
		}
		e.restarts++
		e.reset()
		return ended
	}

	e.ticks++

	// Vacate the tail before claiming the head: the head may enter the cell
	// the tail is leaving.
	if !eats {
		tail := e.body[len(e.body)-1]
		e.body = e.body[:len(e.body)-1]
		delete(e.occupied, tail)
	}
	e.body = slices.Insert(e.body, 0, head)
	e.occupied[head] = struct{}{}

	if !eats {
		return TickResult{Score: e.score, Length: len(e.body), Ticks: e.ticks}
	}

	e.score++
	result := TickResult{Scored: true, Score: e.score, Length: len(e.body), Ticks: e.ticks}
	if !e.spawnFood() {
		e.state = StateWon
		result.Won = true
	}
	return result
}

// collides reports whether moving the head to c ends the run.
// On a non-growing move the current tail cell is free, since it moves away
// in the same tick.
func (e *Engine) collides(c Cell, grows bool) bool {
	if !c.In(e.gridW, e.gridH) {
		return true
	}
	if _, hit := e.occupied[c]; !hit {
		return false
	}
	if !grows && c == e.body[len(e.body)-1] {
		return false
	}
	return true
}

// Restart begins a fresh run with the same settings and a new food cell.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() Settings {
	return e.settings
}

// GridSize returns the grid dimensions in cells.
func (e *Engine) GridSize() (w, h int) {
	return e.gridW, e.gridH
}
