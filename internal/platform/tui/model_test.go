package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/storage"
	"github.com/vovakirdan/voice-snake/internal/voice"
)

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickPeriod: snake.DefaultTickPeriod, Seed: 42}
}

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestGameModel(t *testing.T, opts GameOptions) GameModel {
	t.Helper()
	if opts.Mode == "" {
		opts.Mode = snake.ModeKeyboard
	}
	if opts.Settings == (snake.Settings{}) {
		opts.Settings = snake.DefaultSettings()
	}
	m, err := NewGameModel(opts, testConfig())
	if err != nil {
		t.Fatalf("NewGameModel: %v", err)
	}
	return m
}

// update feeds msg to m and returns the resulting GameModel.
func update(t *testing.T, m GameModel, msg tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T, expected GameModel", next)
	}
	return gm, cmd
}

// tickFor returns the tick m's own loop would deliver.
func tickFor(m GameModel) TickMsg {
	return TickMsg{Game: m.id}
}

func TestGameModelLeavesRoomForHelp(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	snap := m.Snapshot()
	if snap.GridW != 39 || snap.GridH != 19 {
		t.Errorf("grid = %dx%d, expected 39x19", snap.GridW, snap.GridH)
	}

	view := m.View()
	if !strings.Contains(view, "Score: 0") {
		t.Error("view should show the HUD")
	}
	if !strings.Contains(view, "pause") {
		t.Error("view should show key help")
	}
}

func TestGameModelInvalidSettings(t *testing.T) {
	s := snake.DefaultSettings()
	s.InitialSize = 0

	_, err := NewGameModel(GameOptions{Mode: snake.ModeKeyboard, Settings: s}, testConfig())
	if !errors.Is(err, snake.ErrInvalidSettings) {
		t.Errorf("NewGameModel error = %v, expected ErrInvalidSettings", err)
	}
}

func TestGameModelTick(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	m, cmd := update(t, m, tickFor(m))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if got := m.Snapshot().Ticks; got != 1 {
		t.Errorf("ticks = %d, expected 1", got)
	}
}

func TestGameModelIgnoresForeignTicks(t *testing.T) {
	old := newTestGameModel(t, GameOptions{})
	m := newTestGameModel(t, GameOptions{})
	if old.id == m.id {
		t.Fatal("game models should get distinct ids")
	}

	m, cmd := update(t, m, tickFor(old))
	if cmd != nil {
		t.Error("a foreign tick should not schedule another tick")
	}
	if got := m.Snapshot().Ticks; got != 0 {
		t.Errorf("ticks = %d, expected 0", got)
	}
}

func TestGameModelPause(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	m, _ = update(t, m, runeKey('p'))
	m, _ = update(t, m, tickFor(m))
	if !m.State().Paused {
		t.Fatal("game should be paused")
	}

	m, _ = update(t, m, tickFor(m))
	if got := m.Snapshot().Ticks; got != 0 {
		t.Errorf("ticks while paused = %d, expected 0", got)
	}
}

func TestGameModelCollision(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	// The snake starts on the top row, so turning up hits the wall
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tickFor(m))

	if got := m.State().Restarts; got != 1 {
		t.Errorf("restarts = %d, expected 1", got)
	}
	if !strings.Contains(m.View(), "Collision!") {
		t.Error("view should announce the collision")
	}
}

func TestGameModelBackNeedsPause(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	m, _ = update(t, m, runeKey('b'))
	if m.BackToMenu() {
		t.Fatal("back should be ignored while playing")
	}

	m, _ = update(t, m, runeKey('p'))
	m, _ = update(t, m, tickFor(m))
	m, _ = update(t, m, runeKey('b'))
	if !m.BackToMenu() {
		t.Error("back should return to menu when paused")
	}
}

func TestGameModelQuit(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})

	m, cmd := update(t, m, runeKey('q'))
	if !m.IsQuitting() {
		t.Error("q should quit")
	}
	if cmd == nil {
		t.Error("quit should return a command")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestGameModelSavesScoredRuns(t *testing.T) {
	store := openTestStore(t)
	m := newTestGameModel(t, GameOptions{Store: store, Player: "alice"})

	m.saveRun(storage.OutcomeCollision, 0, 5, 12)
	m.saveRun(storage.OutcomeCollision, 3, 8, 40)

	runs, err := store.TopRuns(string(snake.ModeKeyboard), 10)
	if err != nil {
		t.Fatalf("TopRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("saved %d runs, expected only the scored one", len(runs))
	}
	r := runs[0]
	if r.Score != 3 || r.Length != 8 || r.Ticks != 40 || r.Player != "alice" || r.Outcome != storage.OutcomeCollision {
		t.Errorf("saved run = %+v", r)
	}
}

func TestGameModelLoadsBestScore(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveRun(storage.Run{Mode: string(snake.ModeKeyboard), Score: 17, Length: 22}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	m := newTestGameModel(t, GameOptions{Store: store})
	if got := m.State().Best; got != 17 {
		t.Errorf("best = %d, expected 17", got)
	}
}

func TestGameModelVoiceSteering(t *testing.T) {
	ctrl := voice.NewController(voice.DefaultThreshold, voice.DefaultBufferSize, nil)
	m := newTestGameModel(t, GameOptions{Mode: snake.ModeVoice, Voice: ctrl})

	m, _ = update(t, m, voiceMsg{Direction: snake.DirDown, Label: "down", Score: 0.9})
	snap := m.Snapshot()
	if !snap.HasPending || snap.Pending != snake.DirDown {
		t.Fatalf("pending = %v (%v), expected down", snap.Pending, snap.HasPending)
	}

	// Voice off: commands are ignored
	m, _ = update(t, m, runeKey('v'))
	if ctrl.Enabled() {
		t.Fatal("v should disable voice")
	}
	m, _ = update(t, m, voiceMsg{Direction: snake.DirUp, Label: "up", Score: 0.9})
	if got := m.Snapshot().Pending; got != snake.DirDown {
		t.Errorf("pending = %v after disabled command, expected down", got)
	}
	if !strings.Contains(m.View(), "Voice: off") {
		t.Error("HUD should show voice off")
	}
}

func TestWaitForVoice(t *testing.T) {
	if waitForVoice(nil) != nil {
		t.Error("no controller should mean no command")
	}

	ctrl := voice.NewController(voice.DefaultThreshold, voice.DefaultBufferSize, nil)
	ctrl.Handle(core.Prediction{Labels: []string{"left", "noise"}, Scores: []float64{0.95, 0.05}})

	msg := waitForVoice(ctrl)()
	cmd, ok := msg.(voiceMsg)
	if !ok {
		t.Fatalf("msg = %T, expected voiceMsg", msg)
	}
	if cmd.Direction != snake.DirLeft {
		t.Errorf("direction = %v, expected left", cmd.Direction)
	}

	ctrl.Close()
	if msg := waitForVoice(ctrl)(); msg != nil {
		t.Errorf("closed controller should yield nil, got %v", msg)
	}
}

func TestGameModelScreenshot(t *testing.T) {
	dir := t.TempDir()
	m := newTestGameModel(t, GameOptions{ScreenshotDir: dir})

	update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "snake_") {
		t.Errorf("screenshots = %v, expected one snake_*.txt", entries)
	}
}

func TestGameModelResize(t *testing.T) {
	m := newTestGameModel(t, GameOptions{})
	m, _ = update(t, m, tickFor(m))

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	snap := m.Snapshot()
	if snap.GridW != 29 || snap.GridH != 15 {
		t.Errorf("grid after resize = %dx%d, expected 29x15", snap.GridW, snap.GridH)
	}
	if snap.Ticks != 0 {
		t.Errorf("resize should start a fresh run, ticks = %d", snap.Ticks)
	}
}
