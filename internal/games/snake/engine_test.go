package snake

import (
	"errors"
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"
)

// settings20 is a 20×20 grid of 10px cells with a 4-cell snake.
func settings20() Settings {
	return Settings{
		SurfaceWidth:  200,
		SurfaceHeight: 200,
		CellSize:      10,
		InitialSize:   4,
		TickPeriod:    100 * time.Millisecond,
	}
}

func newTestEngine(t *testing.T, s Settings, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(s, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// placeSnake replaces the snake body and heading, keeping the occupancy set
// in sync.
func placeSnake(e *Engine, dir Direction, cells ...Cell) {
	e.body = slices.Clone(cells)
	e.occupied = make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		e.occupied[c] = struct{}{}
	}
	e.direction = dir
	e.hasPending = false
}

func checkInvariants(t *testing.T, snap Snapshot, initial int) {
	t.Helper()

	seen := make(map[Cell]bool, len(snap.Body))
	for i, c := range snap.Body {
		if !c.In(snap.GridW, snap.GridH) {
			t.Fatalf("tick %d: segment %d at %v is out of bounds", snap.Ticks, i, c)
		}
		if seen[c] {
			t.Fatalf("tick %d: segment %d at %v overlaps another segment", snap.Ticks, i, c)
		}
		seen[c] = true
	}

	if snap.State == StateRunning && seen[snap.Food] {
		t.Fatalf("tick %d: food %v is on the snake", snap.Ticks, snap.Food)
	}
	if snap.State == StateRunning && !snap.Food.In(snap.GridW, snap.GridH) {
		t.Fatalf("tick %d: food %v is out of bounds", snap.Ticks, snap.Food)
	}
	if got, want := snap.Len(), initial+snap.Score; got != want {
		t.Fatalf("tick %d: length %d, expected initial %d + score %d", snap.Ticks, got, initial, snap.Score)
	}
}

func TestNewEngineInitialState(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	snap := e.Snapshot()

	if snap.GridW != 20 || snap.GridH != 20 {
		t.Errorf("grid = %dx%d, expected 20x20", snap.GridW, snap.GridH)
	}
	want := []Cell{{3, 0}, {2, 0}, {1, 0}, {0, 0}}
	if !slices.Equal(snap.Body, want) {
		t.Errorf("body = %v, expected %v", snap.Body, want)
	}
	if snap.Dir != DirRight {
		t.Errorf("direction = %v, expected right", snap.Dir)
	}
	if snap.Score != 0 || snap.Ticks != 0 || snap.Restarts != 0 {
		t.Errorf("counters should start at zero, got score=%d ticks=%d restarts=%d",
			snap.Score, snap.Ticks, snap.Restarts)
	}
	if snap.State != StateRunning {
		t.Errorf("state = %v, expected running", snap.State)
	}
	checkInvariants(t, snap, 4)
}

func TestNewEngineRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Settings)
	}{
		{"zero cell size", func(s *Settings) { s.CellSize = 0 }},
		{"negative cell size", func(s *Settings) { s.CellSize = -5 }},
		{"surface narrower than a cell", func(s *Settings) { s.SurfaceWidth = 9 }},
		{"surface shorter than a cell", func(s *Settings) { s.SurfaceHeight = 0 }},
		{"zero initial size", func(s *Settings) { s.InitialSize = 0 }},
		{"initial size wider than grid", func(s *Settings) { s.InitialSize = 21 }},
		{"negative tick period", func(s *Settings) { s.TickPeriod = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings20()
			tt.edit(&s)

			e, err := NewEngine(s, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("error %v should wrap ErrInvalidSettings", err)
			}
			if e != nil {
				t.Error("engine should be nil on error")
			}
		})
	}
}

func TestInitialSizeEqualToGridWidth(t *testing.T) {
	s := settings20()
	s.InitialSize = 20
	e := newTestEngine(t, s, 3)

	snap := e.Snapshot()
	if snap.Head() != (Cell{19, 0}) {
		t.Errorf("head = %v, expected (19,0)", snap.Head())
	}
	checkInvariants(t, snap, 20)
}

func TestScenarioMove(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}

	r := e.Tick()
	if r.Restarted || r.Scored {
		t.Fatalf("plain move reported %+v", r)
	}

	snap := e.Snapshot()
	want := []Cell{{4, 0}, {3, 0}, {2, 0}, {1, 0}}
	if !slices.Equal(snap.Body, want) {
		t.Errorf("body = %v, expected %v", snap.Body, want)
	}
	if snap.Score != 0 {
		t.Errorf("score = %d, expected 0", snap.Score)
	}
}

func TestScenarioEat(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{4, 0}

	r := e.Tick()
	if !r.Scored || r.Restarted {
		t.Fatalf("eating tick reported %+v", r)
	}
	if r.Score != 1 || r.Length != 5 {
		t.Errorf("result score=%d length=%d, expected 1 and 5", r.Score, r.Length)
	}

	snap := e.Snapshot()
	want := []Cell{{4, 0}, {3, 0}, {2, 0}, {1, 0}, {0, 0}}
	if !slices.Equal(snap.Body, want) {
		t.Errorf("body = %v, expected %v", snap.Body, want)
	}
	if snap.Occupies(snap.Food) {
		t.Errorf("new food %v spawned on the snake", snap.Food)
	}
	checkInvariants(t, snap, 4)
}

func TestScenarioWallCollision(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}

	for range 16 {
		if r := e.Tick(); r.Restarted {
			t.Fatal("unexpected restart while crossing row 0")
		}
	}
	if head := e.Snapshot().Head(); head != (Cell{19, 0}) {
		t.Fatalf("head = %v, expected (19,0)", head)
	}

	r := e.Tick()
	if !r.Restarted {
		t.Fatal("moving right from (19,0) should restart")
	}
	if r.Score != 0 || r.Ticks != 16 {
		t.Errorf("ended run score=%d ticks=%d, expected 0 and 16", r.Score, r.Ticks)
	}

	snap := e.Snapshot()
	want := []Cell{{3, 0}, {2, 0}, {1, 0}, {0, 0}}
	if !slices.Equal(snap.Body, want) {
		t.Errorf("body after restart = %v, expected %v", snap.Body, want)
	}
	if snap.Score != 0 || snap.Ticks != 0 {
		t.Errorf("score=%d ticks=%d after restart, expected 0", snap.Score, snap.Ticks)
	}
	if snap.Restarts != 1 {
		t.Errorf("restarts = %d, expected 1", snap.Restarts)
	}
	checkInvariants(t, snap, 4)
}

func TestScenarioReversalIgnored(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}

	if e.RequestDirection(DirLeft) {
		t.Error("RequestDirection(left) while heading right should be refused")
	}

	e.Tick()
	if head := e.Snapshot().Head(); head != (Cell{4, 0}) {
		t.Errorf("head = %v, expected (4,0)", head)
	}
}

func TestOppositeRequestIsIdempotent(t *testing.T) {
	e := newTestEngine(t, settings20(), 9)
	before := e.Snapshot()

	for range 5 {
		e.RequestDirection(DirLeft)
	}

	after := e.Snapshot()
	if after.HasPending || after.Dir != before.Dir {
		t.Errorf("refused requests changed state: dir=%v pending=%v", after.Dir, after.HasPending)
	}
}

func TestReversalCheckedAgainstActiveHeading(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}

	// Down is pending but right is still active, so left stays a reversal.
	if !e.RequestDirection(DirDown) {
		t.Fatal("down should be accepted")
	}
	if e.RequestDirection(DirLeft) {
		t.Error("left should be refused until down takes effect")
	}

	e.Tick()
	if !e.RequestDirection(DirLeft) {
		t.Error("left should be accepted once heading down")
	}
}

func TestLastRequestWins(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}

	e.RequestDirection(DirUp)
	e.RequestDirection(DirDown)
	e.Tick()

	if head := e.Snapshot().Head(); head != (Cell{3, 1}) {
		t.Errorf("head = %v, expected (3,1)", head)
	}
}

func TestSingleCellSnakeMayReverse(t *testing.T) {
	s := settings20()
	s.InitialSize = 1
	e := newTestEngine(t, s, 1)
	e.food = Cell{10, 10}

	if !e.RequestDirection(DirLeft) {
		t.Fatal("a one-cell snake has no neck to turn into")
	}
	if r := e.Tick(); !r.Restarted {
		t.Error("moving left from (0,0) should hit the wall")
	}
}

func TestInvalidDirectionIgnored(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	if e.RequestDirection(Direction(42)) {
		t.Error("invalid direction should be refused")
	}
	if e.Snapshot().HasPending {
		t.Error("invalid direction should not be buffered")
	}
}

func TestSelfCollision(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}
	// Head (1,1) moving left; (1,2) below it is body but not the tail.
	placeSnake(e, DirLeft, Cell{1, 1}, Cell{2, 1}, Cell{2, 2}, Cell{1, 2}, Cell{0, 2})

	e.RequestDirection(DirDown)
	if r := e.Tick(); !r.Restarted {
		t.Fatal("moving into the body should restart")
	}
}

func TestMovingIntoVacatingTail(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	e.food = Cell{10, 10}
	// Square loop: the head chases the tail at (1,1).
	placeSnake(e, DirRight, Cell{1, 0}, Cell{0, 0}, Cell{0, 1}, Cell{1, 1})

	e.RequestDirection(DirDown)
	r := e.Tick()
	if r.Restarted {
		t.Fatal("the tail leaves its cell on a non-growing tick")
	}

	snap := e.Snapshot()
	want := []Cell{{1, 1}, {1, 0}, {0, 0}, {0, 1}}
	if !slices.Equal(snap.Body, want) {
		t.Errorf("body = %v, expected %v", snap.Body, want)
	}
	if !e.Snapshot().Occupies(Cell{1, 1}) {
		t.Error("head cell should be occupied")
	}
	if _, ok := e.occupied[Cell{1, 1}]; !ok {
		t.Error("occupancy set lost the head cell")
	}
	if len(e.occupied) != len(e.body) {
		t.Errorf("occupancy set has %d cells, body has %d", len(e.occupied), len(e.body))
	}
}

func TestWinOnFullGrid(t *testing.T) {
	s := Settings{SurfaceWidth: 20, SurfaceHeight: 10, CellSize: 10, InitialSize: 1}
	e := newTestEngine(t, s, 1)

	if food := e.Snapshot().Food; food != (Cell{1, 0}) {
		t.Fatalf("food = %v, expected the only free cell (1,0)", food)
	}

	r := e.Tick()
	if !r.Won || !r.Scored {
		t.Fatalf("filling the grid should win, got %+v", r)
	}
	if e.Snapshot().State != StateWon {
		t.Fatal("engine should be in the won state")
	}

	before := e.Snapshot()
	r = e.Tick()
	if !r.Won || r.Scored || r.Restarted {
		t.Errorf("ticks after winning should be idle, got %+v", r)
	}
	if after := e.Snapshot(); after.Ticks != before.Ticks || !slices.Equal(after.Body, before.Body) {
		t.Error("won engine should not move")
	}

	e.Restart()
	snap := e.Snapshot()
	if snap.State != StateRunning || snap.Len() != 1 || snap.Score != 0 {
		t.Errorf("restart after win: state=%v len=%d score=%d", snap.State, snap.Len(), snap.Score)
	}
}

func TestInitialSnakeFillsGrid(t *testing.T) {
	s := Settings{SurfaceWidth: 30, SurfaceHeight: 10, CellSize: 10, InitialSize: 3}
	e := newTestEngine(t, s, 1)

	snap := e.Snapshot()
	if snap.State != StateWon {
		t.Errorf("state = %v, expected won when no cell is free", snap.State)
	}
	if snap.Food.In(snap.GridW, snap.GridH) {
		t.Errorf("food %v should be off-grid", snap.Food)
	}
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	s := Settings{SurfaceWidth: 80, SurfaceHeight: 60, CellSize: 10, InitialSize: 3}
	e := newTestEngine(t, s, 77)
	moves := rand.New(rand.NewSource(5))

	restarts := 0
	for range 5000 {
		if moves.Intn(3) == 0 {
			e.RequestDirection(Directions[moves.Intn(len(Directions))])
		}

		prev := e.Snapshot()
		r := e.Tick()
		snap := e.Snapshot()

		if r.Restarted {
			restarts++
			if snap.Len() != 3 || snap.Score != 0 || snap.Dir != DirRight {
				t.Fatalf("restart left len=%d score=%d dir=%v", snap.Len(), snap.Score, snap.Dir)
			}
			if snap.Head() != (Cell{2, 0}) {
				t.Fatalf("restart head = %v, expected (2,0)", snap.Head())
			}
			if r.Score != prev.Score {
				t.Fatalf("restart reported score %d, run had %d", r.Score, prev.Score)
			}
		} else if snap.State == StateRunning {
			grew := snap.Len() - prev.Len()
			if r.Scored && (grew != 1 || snap.Score != prev.Score+1) {
				t.Fatalf("scoring tick grew by %d, score %d -> %d", grew, prev.Score, snap.Score)
			}
			if !r.Scored && grew != 0 {
				t.Fatalf("non-scoring tick grew by %d", grew)
			}
		}

		checkInvariants(t, snap, 3)
		if snap.Restarts != restarts {
			t.Fatalf("restarts = %d, counted %d", snap.Restarts, restarts)
		}
	}

	if restarts == 0 {
		t.Error("random play on a small grid should collide at least once")
	}
}

func TestEngineDeterminism(t *testing.T) {
	run := func() Snapshot {
		e := newTestEngine(t, settings20(), 12345)
		for i := range 300 {
			switch i % 37 {
			case 5:
				e.RequestDirection(DirDown)
			case 17:
				e.RequestDirection(DirLeft)
			case 29:
				e.RequestDirection(DirUp)
			case 33:
				e.RequestDirection(DirRight)
			}
			e.Tick()
		}
		return e.Snapshot()
	}

	a, b := run(), run()
	if !slices.Equal(a.Body, b.Body) {
		t.Errorf("body mismatch: %v vs %v", a.Body, b.Body)
	}
	if a.Food != b.Food {
		t.Errorf("food mismatch: %v vs %v", a.Food, b.Food)
	}
	if a.Score != b.Score || a.Ticks != b.Ticks || a.Restarts != b.Restarts || a.Dir != b.Dir {
		t.Errorf("state mismatch: %+v vs %+v", a, b)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)
	snap := e.Snapshot()
	snap.Body[0] = Cell{99, 99}

	if e.Snapshot().Head() == (Cell{99, 99}) {
		t.Error("mutating a snapshot should not affect the engine")
	}
}

func TestConcurrentRequests(t *testing.T) {
	e := newTestEngine(t, settings20(), 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			e.RequestDirection(Directions[i%len(Directions)])
		}
	}()

	for range 1000 {
		e.Tick()
	}
	wg.Wait()

	checkInvariants(t, e.Snapshot(), 4)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"up", DirUp, true},
		{"Down", DirDown, true},
		{" LEFT ", DirLeft, true},
		{"right", DirRight, true},
		{"stop", DirRight, false},
		{"", DirRight, false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = %v, %v; expected %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("%v: opposite of opposite should be itself", d)
		}
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		if dx+ox != 0 || dy+oy != 0 {
			t.Errorf("%v: deltas should cancel out", d)
		}
	}
}
