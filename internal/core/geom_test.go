package core

import (
	"testing"
	"time"
)

func TestCenteredRect(t *testing.T) {
	tests := []struct {
		name           string
		outerW, outerH int
		w, h           int
		x, y           int
	}{
		{"even fit", 80, 24, 20, 4, 30, 10},
		{"odd leftover", 81, 25, 20, 4, 30, 10},
		{"exact", 10, 5, 10, 5, 0, 0},
		{"larger than area", 10, 5, 14, 9, -2, -2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := CenteredRect(tc.outerW, tc.outerH, tc.w, tc.h)
			if r.X != tc.x || r.Y != tc.y || r.W != tc.w || r.H != tc.h {
				t.Errorf("CenteredRect = %+v, expected origin (%d, %d)", r, tc.x, tc.y)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}
}

func TestRuntimeConfigTickRate(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TickRate() != 10 {
		t.Errorf("default TickRate() = %d, expected 10", cfg.TickRate())
	}

	cfg.TickPeriod = 50 * time.Millisecond
	if cfg.TickRate() != 20 {
		t.Errorf("TickRate() at 50ms = %d, expected 20", cfg.TickRate())
	}

	cfg.TickPeriod = 0
	if cfg.TickRate() != 10 {
		t.Errorf("TickRate() with zero period should fall back to default, got %d", cfg.TickRate())
	}
}
