package snake

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied by DefaultSettings.
const (
	DefaultCellSize    = 10
	DefaultInitialSize = 5
	DefaultTickPeriod  = 100 * time.Millisecond
)

// ErrInvalidSettings is wrapped by every settings validation failure.
var ErrInvalidSettings = errors.New("snake: invalid settings")

// Settings configures an Engine. Surface dimensions are in pixels and are
// divided by CellSize to get the grid; a surface dimension of 0 asks the
// terminal game to fit the grid to the screen.
type Settings struct {
	SurfaceWidth  int
	SurfaceHeight int
	CellSize      int
	InitialSize   int
	TickPeriod    time.Duration
}

// DefaultSettings returns {CellSize: 10, InitialSize: 5, TickPeriod: 100ms}
// with a surface left to be fitted to the screen.
func DefaultSettings() Settings {
	return Settings{
		CellSize:    DefaultCellSize,
		InitialSize: DefaultInitialSize,
		TickPeriod:  DefaultTickPeriod,
	}
}

// GridWidth returns the number of columns in the grid.
func (s Settings) GridWidth() int {
	if s.CellSize <= 0 {
		return 0
	}
	return s.SurfaceWidth / s.CellSize
}

// GridHeight returns the number of rows in the grid.
func (s Settings) GridHeight() int {
	if s.CellSize <= 0 {
		return 0
	}
	return s.SurfaceHeight / s.CellSize
}

// WithGrid returns a copy of s whose surface holds exactly w×h cells.
func (s Settings) WithGrid(w, h int) Settings {
	s.SurfaceWidth = w * s.CellSize
	s.SurfaceHeight = h * s.CellSize
	return s
}

// Validate checks the construction preconditions of an Engine.
func (s Settings) Validate() error {
	if s.CellSize < 1 {
		return fmt.Errorf("%w: cell size must be positive, got %d", ErrInvalidSettings, s.CellSize)
	}
	if s.GridWidth() < 1 || s.GridHeight() < 1 {
		return fmt.Errorf("%w: surface %dx%d holds no %dpx cell",
			ErrInvalidSettings, s.SurfaceWidth, s.SurfaceHeight, s.CellSize)
	}
	if s.InitialSize < 1 {
		return fmt.Errorf("%w: initial size must be at least 1, got %d", ErrInvalidSettings, s.InitialSize)
	}
	if s.InitialSize > s.GridWidth() {
		return fmt.Errorf("%w: initial size %d exceeds grid width %d",
			ErrInvalidSettings, s.InitialSize, s.GridWidth())
	}
	if s.TickPeriod < 0 {
		return fmt.Errorf("%w: tick period must not be negative, got %s", ErrInvalidSettings, s.TickPeriod)
	}
	return nil
}
