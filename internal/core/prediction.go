package core

// Prediction is one frame of output from a voice-command classifier:
// parallel slices of word labels and their probabilities.
type Prediction struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Best returns the label with the highest score.
// ok is false when the prediction is empty or the slices disagree in length.
func (p Prediction) Best() (label string, score float64, ok bool) {
	if len(p.Scores) == 0 || len(p.Labels) != len(p.Scores) {
		return "", 0, false
	}
	best := 0
	for i := 1; i < len(p.Scores); i++ {
		if p.Scores[i] > p.Scores[best] {
			best = i
		}
	}
	return p.Labels[best], p.Scores[best], true
}
