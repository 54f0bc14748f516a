package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/registry"
	"github.com/vovakirdan/voice-snake/internal/voice"
)

var (
	flagSimTicks  int
	flagSimW      int
	flagSimH      int
	flagSimTurn   float64
	flagSimVoice  string
	flagSimFile   string
	flagSimJSON   bool
	flagSimVerify bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the engine headless and print the final board",
	Long: `Run the snake engine without a terminal UI.

By default the snake takes random legal turns. With --voice the turns come
from a voice source instead, and the engine advances one tick per
prediction, so a recording always replays to the same board.

Examples:
  snake simulate --seed 7 --ticks 500
  snake simulate --width 10 --height 6 --json
  snake simulate --voice file --voice-file ./session.jsonl --seed 1
  cat session.jsonl | snake simulate --voice stdin`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimTicks, "ticks", 200, "Number of ticks to run (random turns only)")
	simulateCmd.Flags().IntVar(&flagSimW, "width", 20, "Grid width in cells")
	simulateCmd.Flags().IntVar(&flagSimH, "height", 10, "Grid height in cells")
	simulateCmd.Flags().Float64Var(&flagSimTurn, "turn-chance", 0.2, "Chance of a random turn on each tick")
	simulateCmd.Flags().StringVar(&flagSimVoice, "voice", "", "Take turns from a voice source: stdin or file")
	simulateCmd.Flags().StringVar(&flagSimFile, "voice-file", "", "Recording for the file voice source")
	simulateCmd.Flags().BoolVar(&flagSimJSON, "json", false, "Print the final snapshot as JSON")
	simulateCmd.Flags().BoolVar(&flagSimVerify, "verify", false, "Run twice and check both runs end identically")
}

// simulation drives an engine and keeps run statistics.
type simulation struct {
	mu      sync.Mutex
	engine  *snake.Engine
	best    int
	scored  int
	turns   int
	refused int
}

func newSimulation(seed int64) (*simulation, error) {
	settings := appCfg.Settings().WithGrid(flagSimW, flagSimH)
	engine, err := snake.NewEngine(settings, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	return &simulation{engine: engine}, nil
}

// turn requests a heading change and counts the outcome.
func (s *simulation) turn(d snake.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.RequestDirection(d) {
		s.turns++
	} else {
		s.refused++
	}
}

// tick advances the engine once.
func (s *simulation) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.engine.Tick()
	if r.Scored {
		s.scored++
	}
	if r.Score > s.best {
		s.best = r.Score
	}
}

// runRandom ticks n times, taking random turns.
func (s *simulation) runRandom(rng *rand.Rand, n int) {
	for range n {
		if rng.Float64() < flagSimTurn {
			s.turn(snake.Directions[rng.Intn(len(snake.Directions))])
		}
		s.tick()
	}
}

// runVoice feeds a voice source through a controller, one tick per
// prediction, until the source ends.
func (s *simulation) runVoice(ctx context.Context, src registry.Source) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl := voice.NewController(appCfg.Voice.Threshold, appCfg.Voice.Buffer, logger)
	defer ctrl.Close()

	return src.Listen(ctx, func(p core.Prediction) {
		if ctrl.Handle(p) {
			select {
			case cmd := <-ctrl.Commands():
				s.turn(cmd.Direction)
			default:
			}
		}
		s.tick()
	})
}

func runSimulate(_ *cobra.Command, _ []string) error {
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	run := func() (*simulation, error) {
		sim, err := newSimulation(seed)
		if err != nil {
			return nil, err
		}
		if flagSimVoice == "" {
			sim.runRandom(rand.New(rand.NewSource(seed)), flagSimTicks)
			return sim, nil
		}

		src, err := registry.Create(flagSimVoice, registry.Options{
			File:     firstNonEmpty(flagSimFile, appCfg.Voice.File),
			Interval: time.Nanosecond, // No pacing: one tick per prediction
			Stdin:    os.Stdin,
		})
		if err != nil {
			return nil, err
		}
		return sim, sim.runVoice(context.Background(), src)
	}

	sim, err := run()
	if err != nil {
		return err
	}
	snap := sim.engine.Snapshot()

	if flagSimVerify {
		if flagSimVoice == "stdin" {
			return fmt.Errorf("--verify cannot replay stdin twice")
		}
		again, err := run()
		if err != nil {
			return err
		}
		if !sameSnapshot(snap, again.engine.Snapshot()) {
			return fmt.Errorf("seed %d produced two different boards", seed)
		}
		fmt.Fprintln(os.Stderr, "verify: both runs ended on the same board")
	}

	if flagSimJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	gridW, gridH := sim.engine.GridSize()
	fmt.Print(drawBoard(snap))
	fmt.Println()
	fmt.Printf("grid %dx%d  seed %d  ticks %d  score %d  length %d  restarts %d  best %d\n",
		gridW, gridH, seed, snap.Ticks, snap.Score, snap.Len(), snap.Restarts, sim.best)
	fmt.Printf("food eaten %d  turns %d  refused %d\n", sim.scored, sim.turns, sim.refused)
	if snap.State == snake.StateWon {
		fmt.Println("the snake filled the grid")
	}
	return nil
}

// drawBoard renders a snapshot as ASCII art.
func drawBoard(s snake.Snapshot) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", s.GridW) + "+\n"

	b.WriteString(border)
	for y := range s.GridH {
		b.WriteByte('|')
		for x := range s.GridW {
			c := snake.Cell{X: x, Y: y}
			switch {
			case c == s.Head():
				b.WriteByte('@')
			case s.Occupies(c):
				b.WriteByte('o')
			case c == s.Food:
				b.WriteByte('*')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}

func sameSnapshot(a, b snake.Snapshot) bool {
	if a.Food != b.Food || a.Dir != b.Dir || a.Score != b.Score ||
		a.Ticks != b.Ticks || a.Restarts != b.Restarts || a.State != b.State {
		return false
	}
	return slices.Equal(a.Body, b.Body)
}
