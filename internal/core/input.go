package core

// Action is a semantic player intent, abstracted from physical key presses
// and from voice labels.
type Action int

const (
	ActionNone        Action = iota
	ActionUp                 // W, K, Up arrow, voice "up"
	ActionDown               // S, J, Down arrow, voice "down"
	ActionLeft               // A, H, Left arrow, voice "left"
	ActionRight              // D, L, Right arrow, voice "right"
	ActionPause              // P - pause/unpause
	ActionRestart            // R - start a fresh run
	ActionToggleVoice        // V - enable/disable voice steering
	ActionBack               // B, Esc - leave the current screen
	ActionQuit               // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionToggleVoice:
		return "ToggleVoice"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsDirectional reports whether the action steers the snake.
// Directional actions bypass the frame and go straight to the engine's
// pending-direction slot, so their order is preserved.
func (a Action) IsDirectional() bool {
	return a == ActionUp || a == ActionDown || a == ActionLeft || a == ActionRight
}

// InputFrame collects the non-directional actions triggered between two ticks.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
