package core

import "testing"

func TestInputFrame(t *testing.T) {
	var f InputFrame // zero value must be usable
	if f.Has(ActionPause) {
		t.Error("empty frame should not report actions")
	}

	f.Set(ActionPause)
	f.Set(ActionRestart)
	if !f.Has(ActionPause) || !f.Has(ActionRestart) {
		t.Error("frame should report the actions that were set")
	}

	f.Clear()
	if f.Has(ActionPause) || f.Has(ActionRestart) {
		t.Error("Clear should drop all actions")
	}
}

func TestActionIsDirectional(t *testing.T) {
	directional := []Action{ActionUp, ActionDown, ActionLeft, ActionRight}
	for _, a := range directional {
		if !a.IsDirectional() {
			t.Errorf("%s should be directional", a)
		}
	}

	other := []Action{ActionNone, ActionPause, ActionRestart, ActionToggleVoice, ActionBack, ActionQuit}
	for _, a := range other {
		if a.IsDirectional() {
			t.Errorf("%s should not be directional", a)
		}
	}
}

func TestPredictionBest(t *testing.T) {
	tests := []struct {
		name      string
		pred      Prediction
		wantLabel string
		wantScore float64
		wantOK    bool
	}{
		{
			name:      "argmax",
			pred:      Prediction{Labels: []string{"_noise_", "up", "left"}, Scores: []float64{0.1, 0.8, 0.1}},
			wantLabel: "up",
			wantScore: 0.8,
			wantOK:    true,
		},
		{
			name:      "first wins ties",
			pred:      Prediction{Labels: []string{"down", "right"}, Scores: []float64{0.5, 0.5}},
			wantLabel: "down",
			wantScore: 0.5,
			wantOK:    true,
		},
		{
			name: "empty",
			pred: Prediction{},
		},
		{
			name: "length mismatch",
			pred: Prediction{Labels: []string{"up"}, Scores: []float64{0.2, 0.9}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			label, score, ok := tc.pred.Best()
			if ok != tc.wantOK || label != tc.wantLabel || score != tc.wantScore {
				t.Errorf("Best() = (%q, %v, %v), expected (%q, %v, %v)",
					label, score, ok, tc.wantLabel, tc.wantScore, tc.wantOK)
			}
		})
	}
}
