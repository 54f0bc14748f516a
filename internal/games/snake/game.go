package snake

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/voice-snake/internal/core"
)

// Mode selects how the game is steered. It doubles as the score table id.
type Mode string

const (
	ModeKeyboard Mode = "snake"
	ModeVoice    Mode = "snake_voice"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeKeyboard, ModeVoice}

// Title returns the display name of the mode.
func (m Mode) Title() string {
	if m == ModeVoice {
		return "Snake (Voice)"
	}
	return "Snake"
}

// Layout of the terminal field.
const (
	hudHeight  = 2 // HUD line + separator
	borderSize = 2 // Box outline on both sides
	cellChars  = 2 // Each grid cell is two characters wide so it looks square
)

// ScreenFor returns the screen size needed to show a w×h grid.
func ScreenFor(gridW, gridH int) (w, h int) {
	return gridW*cellChars + borderSize, gridH + hudHeight + borderSize
}

// Game drives an Engine from the platform's tick loop and draws it into a
// core.Screen. It adds pause, explicit restart and a session best score.
type Game struct {
	mode     Mode
	base     Settings // As configured; zero surface means fit to screen
	settings Settings // Effective settings of the current engine
	engine   *Engine
	rng      *rand.Rand

	screenW  int
	screenH  int
	fieldX   int
	fieldY   int
	tickRate int

	paused   bool
	tooSmall bool
	voiceOn  bool
	best     int
	flash    int // Ticks left to show the collision banner
}

// New creates a game in the given mode. Call Reset before Step.
func New(mode Mode, settings Settings) *Game {
	return &Game{
		mode: mode,
		base: settings,
	}
}

// ID returns the game identifier used for score storage.
func (g *Game) ID() string {
	return string(g.mode)
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.mode.Title()
}

// Mode returns the steering mode.
func (g *Game) Mode() Mode {
	return g.mode
}

// Reset builds a fresh engine sized for the screen.
// Invalid configured settings are returned as errors; a screen that is
// merely too small puts the game into the "window too small" state instead.
func (g *Game) Reset(cfg core.RuntimeConfig) error {
	probe := g.base
	if probe.SurfaceWidth == 0 {
		probe.SurfaceWidth = max(probe.InitialSize, 1) * max(probe.CellSize, 1)
	}
	if probe.SurfaceHeight == 0 {
		probe.SurfaceHeight = max(probe.CellSize, 1)
	}
	if err := probe.Validate(); err != nil {
		return err
	}

	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tickRate = cfg.TickRate()
	g.paused = false
	g.flash = 0
	g.engine = nil

	settings := g.base
	if settings.SurfaceWidth == 0 {
		settings.SurfaceWidth = max((g.screenW-borderSize)/cellChars, 0) * settings.CellSize
	}
	if settings.SurfaceHeight == 0 {
		settings.SurfaceHeight = max(g.screenH-hudHeight-borderSize, 0) * settings.CellSize
	}
	g.settings = settings

	needW, needH := ScreenFor(settings.GridWidth(), settings.GridHeight())
	if settings.Validate() != nil || needW > g.screenW || needH > g.screenH {
		g.tooSmall = true
		return nil
	}
	g.tooSmall = false

	engine, err := NewEngine(settings, g.rng)
	if err != nil {
		return err
	}
	g.engine = engine

	// Center the field horizontally under the HUD
	g.fieldX = (g.screenW - needW) / 2
	g.fieldY = hudHeight
	return nil
}

// Settings returns the effective settings after fitting to the screen.
func (g *Game) Settings() Settings {
	return g.settings
}

// SetBest seeds the best score shown in the HUD, e.g. from stored runs.
func (g *Game) SetBest(score int) {
	if score > g.best {
		g.best = score
	}
}

// SetVoiceEnabled updates the voice indicator in the HUD.
func (g *Game) SetVoiceEnabled(on bool) {
	g.voiceOn = on
}

// RequestDirection forwards a heading change to the engine.
func (g *Game) RequestDirection(d Direction) bool {
	if g.engine == nil || g.paused {
		return false
	}
	return g.engine.RequestDirection(d)
}

// Steer maps a directional action to a heading change.
func (g *Game) Steer(a core.Action) bool {
	switch a {
	case core.ActionUp:
		return g.RequestDirection(DirUp)
	case core.ActionDown:
		return g.RequestDirection(DirDown)
	case core.ActionLeft:
		return g.RequestDirection(DirLeft)
	case core.ActionRight:
		return g.RequestDirection(DirRight)
	}
	return false
}

// Step handles frame actions and advances the engine by one tick.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	if g.engine == nil {
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionRestart) {
		return g.restart()
	}

	if input.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if g.flash > 0 {
		g.flash--
	}

	r := g.engine.Tick()
	res := core.StepResult{
		Restarted: r.Restarted,
		Scored:    r.Scored,
	}
	if r.Score > g.best {
		g.best = r.Score
	}

	switch {
	case r.Restarted:
		g.flash = max(g.tickRate, 1)
		res.RunEnded = true
	case r.Won && r.Scored:
		// The winning tick is the last scoring tick; later ticks are idle.
		res.RunEnded = true
	}
	if res.RunEnded {
		res.FinalScore = r.Score
		res.FinalLength = r.Length
		res.FinalTicks = r.Ticks
	}

	res.State = g.State()
	return res
}

// restart abandons the current run on player request.
func (g *Game) restart() core.StepResult {
	snap := g.engine.Snapshot()
	g.engine.Restart()
	g.paused = false
	g.flash = 0

	res := core.StepResult{State: g.State()}
	if snap.Ticks > 0 && snap.State != StateWon {
		res.RunEnded = true
		res.FinalScore = snap.Score
		res.FinalLength = snap.Len()
		res.FinalTicks = snap.Ticks
	}
	return res
}

// State returns the summary the platform needs.
func (g *Game) State() core.GameState {
	st := core.GameState{
		Best:   g.best,
		Paused: g.paused,
	}
	if g.engine != nil {
		snap := g.engine.Snapshot()
		st.Score = snap.Score
		st.Restarts = snap.Restarts
		st.Won = snap.State == StateWon
	}
	return st
}

// Snapshot returns the engine snapshot, or an empty one when the window is
// too small to play.
func (g *Game) Snapshot() Snapshot {
	if g.engine == nil {
		return Snapshot{}
	}
	return g.engine.Snapshot()
}

// Render draws the HUD, the field, the snake and the food.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	snap := g.Snapshot()
	g.renderHUD(dst, snap)

	if g.tooSmall {
		needW, needH := ScreenFor(g.settings.GridWidth(), g.settings.GridHeight())
		g.renderOverlay(dst, "Window too small", fmt.Sprintf("Need %dx%d", needW, needH))
		return
	}

	box := core.NewRect(g.fieldX, g.fieldY, snap.GridW*cellChars+borderSize, snap.GridH+borderSize)
	dst.DrawBox(box, core.ColorGray)

	if snap.Food.In(snap.GridW, snap.GridH) {
		fx, fy := g.cellOrigin(snap.Food)
		dst.SetColor(fx, fy, '●', core.ColorBrightRed)
	}

	for i := len(snap.Body) - 1; i >= 0; i-- {
		color := core.ColorGreen
		if i == 0 {
			color = core.ColorBrightGreen
		}
		sx, sy := g.cellOrigin(snap.Body[i])
		dst.SetColor(sx, sy, '█', color)
		dst.SetColor(sx+1, sy, '█', color)
	}

	switch {
	case snap.State == StateWon:
		g.renderOverlay(dst, "You Win!", fmt.Sprintf("Score %d - press R to play again", snap.Score))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// cellOrigin returns the screen position of the left character of c.
func (g *Game) cellOrigin(c Cell) (x, y int) {
	return g.fieldX + 1 + c.X*cellChars, g.fieldY + 1 + c.Y
}

func (g *Game) renderHUD(dst *core.Screen, snap Snapshot) {
	hud := fmt.Sprintf(" %s — Score: %d  Best: %d  Restarts: %d",
		g.Title(), snap.Score, g.best, snap.Restarts)
	dst.DrawText(0, 0, hud, core.ColorBrightWhite)

	x := len([]rune(hud)) + 2
	if g.mode == ModeVoice {
		status, color := "Voice: off", core.ColorGray
		if g.voiceOn {
			status, color = "Voice: on", core.ColorCyan
		}
		dst.DrawText(x, 0, status, color)
		x += len(status) + 2
	}
	if g.flash > 0 {
		dst.DrawText(x, 0, "Collision! Restarting...", core.ColorYellow)
	}

	for x := range dst.Width() {
		dst.SetColor(x, 1, '─', core.ColorGray)
	}
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	boxW := max(len(line1), len(line2)) + 4
	boxH := 5
	box := core.CenteredRect(dst.Width(), dst.Height(), boxW, boxH)

	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorYellow)
	dst.DrawTextCentered(box.Y+1, line1, core.ColorBrightWhite)
	dst.DrawTextCentered(box.Y+3, line2, core.ColorDefault)
}
