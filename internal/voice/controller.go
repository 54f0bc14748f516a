// Package voice turns classifier predictions into snake headings.
//
// A Source (see internal/registry) delivers core.Prediction frames. The
// Controller keeps the frames whose best label is a direction and whose
// confidence clears the threshold, and queues them as Commands for the game
// loop. Sources register themselves here in init().
package voice

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/registry"
)

// DefaultThreshold is the confidence a label must exceed to be obeyed.
const DefaultThreshold = 0.75

// DefaultBufferSize is the number of commands queued before the oldest
// are dropped.
const DefaultBufferSize = 8

// Command is an accepted voice instruction.
type Command struct {
	Direction snake.Direction
	Label     string
	Score     float64
}

// Controller filters predictions and queues accepted commands.
// Handle is safe to call from any goroutine.
type Controller struct {
	threshold float64
	logger    *log.Logger
	enabled   atomic.Bool

	commands chan Command
	done     chan struct{}
	doneOnce sync.Once

	accepted atomic.Int64
	rejected atomic.Int64
}

// NewController creates a controller that starts enabled.
// A threshold outside (0, 1] falls back to DefaultThreshold.
func NewController(threshold float64, bufferSize int, logger *log.Logger) *Controller {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Controller{
		threshold: threshold,
		logger:    logger,
		commands:  make(chan Command, bufferSize),
		done:      make(chan struct{}),
	}
	c.enabled.Store(true)
	return c
}

// Threshold returns the confidence cut-off.
func (c *Controller) Threshold() float64 {
	return c.threshold
}

// Enabled reports whether predictions are currently obeyed.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// SetEnabled turns voice steering on or off.
func (c *Controller) SetEnabled(on bool) {
	c.enabled.Store(on)
}

// Toggle flips voice steering and returns the new state.
func (c *Controller) Toggle() bool {
	for {
		old := c.enabled.Load()
		if c.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Handle evaluates one prediction and queues a command when it is accepted.
// Returns whether the prediction was accepted.
func (c *Controller) Handle(p core.Prediction) bool {
	if !c.Enabled() {
		return false
	}

	label, score, ok := p.Best()
	if !ok {
		c.rejected.Add(1)
		c.logger.Debug("voice: malformed prediction", "labels", len(p.Labels), "scores", len(p.Scores))
		return false
	}

	dir, isDir := snake.ParseDirection(label)
	if !isDir || score <= c.threshold {
		c.rejected.Add(1)
		c.logger.Debug("voice: rejected", "label", label, "score", score)
		return false
	}

	c.accepted.Add(1)
	c.logger.Debug("voice: accepted", "label", label, "score", score)
	c.send(Command{Direction: dir, Label: label, Score: score})
	return true
}

// send queues cmd. If the buffer is full the oldest command is dropped.
func (c *Controller) send(cmd Command) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.commands <- cmd:
	default:
		select {
		case <-c.commands:
		default:
		}
		select {
		case c.commands <- cmd:
		default:
		}
	}
}

// Commands returns the channel accepted commands are delivered on.
func (c *Controller) Commands() <-chan Command {
	return c.commands
}

// Done returns a channel that closes when the controller is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Close stops accepting commands. Safe to call multiple times.
func (c *Controller) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Stats returns the number of accepted and rejected predictions.
func (c *Controller) Stats() (accepted, rejected int64) {
	return c.accepted.Load(), c.rejected.Load()
}

// Run feeds src into the controller until ctx is cancelled or the source
// ends. Source failures are returned for the caller to log.
func (c *Controller) Run(ctx context.Context, src registry.Source) error {
	c.logger.Info("voice: listening", "source", src.Name())
	err := src.Listen(ctx, func(p core.Prediction) { c.Handle(p) })
	accepted, rejected := c.Stats()
	c.logger.Info("voice: source stopped", "source", src.Name(), "accepted", accepted, "rejected", rejected)
	return err
}
