package config

import "fmt"

// SpeedPreset represents a named pace for the snake.
type SpeedPreset string

const (
	SpeedSlow   SpeedPreset = "slow"
	SpeedNormal SpeedPreset = "normal"
	SpeedFast   SpeedPreset = "fast"
	SpeedInsane SpeedPreset = "insane"
)

// SpeedPresets lists the presets from slowest to fastest.
var SpeedPresets = []SpeedPreset{SpeedSlow, SpeedNormal, SpeedFast, SpeedInsane}

// TickMSForPreset returns the tick interval in milliseconds for a preset.
func TickMSForPreset(preset SpeedPreset) (int, bool) {
	switch preset {
	case SpeedSlow:
		return 160, true
	case SpeedNormal:
		return 100, true
	case SpeedFast:
		return 70, true
	case SpeedInsane:
		return 40, true
	default:
		return 0, false
	}
}

// ApplySpeedPreset sets the tick interval from a named preset.
func ApplySpeedPreset(cfg *Config, preset SpeedPreset) error {
	ms, ok := TickMSForPreset(preset)
	if !ok {
		return fmt.Errorf("%w: unknown speed %q (want slow, normal, fast or insane)", ErrInvalid, preset)
	}
	cfg.Stage.TickMS = ms
	return nil
}
