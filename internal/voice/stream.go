package voice

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/registry"
)

// DefaultReplayInterval paces frames replayed from a file.
const DefaultReplayInterval = 250 * time.Millisecond

const (
	stdinDescription = "newline-delimited JSON predictions on standard input"
	fileDescription  = "replay newline-delimited JSON predictions from a file"
)

func init() {
	registry.Register("stdin", stdinDescription, func(opts registry.Options) registry.Source {
		r := opts.Stdin
		if r == nil {
			r = os.Stdin
		}
		src := NewReaderSource("stdin", r, opts.Logger)
		src.desc = stdinDescription
		return src
	})

	registry.Register("file", fileDescription, func(opts registry.Options) registry.Source {
		return NewFileSource(opts)
	})
}

// NewFileSource replays a recording of newline-delimited JSON predictions,
// one frame per Interval.
func NewFileSource(opts registry.Options) *StreamSource {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultReplayInterval
	}
	path := opts.File
	return &StreamSource{
		name:     "file",
		desc:     fileDescription,
		interval: interval,
		open: func() (io.ReadCloser, error) {
			if path == "" {
				return nil, fmt.Errorf("voice: file source needs a path")
			}
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("voice: open recording: %w", err)
			}
			return f, nil
		},
		logger: loggerOr(opts.Logger),
	}
}

// NewReaderSource reads predictions from r without pacing.
func NewReaderSource(name string, r io.Reader, logger *log.Logger) *StreamSource {
	return &StreamSource{
		name:   name,
		desc:   "newline-delimited JSON predictions",
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		logger: loggerOr(logger),
	}
}

// StreamSource reads one JSON prediction per line. Blank lines are skipped
// and malformed lines are logged and skipped.
type StreamSource struct {
	name     string
	desc     string
	interval time.Duration
	open     func() (io.ReadCloser, error)
	logger   *log.Logger
}

// Name returns the registered name.
func (s *StreamSource) Name() string {
	return s.name
}

// Description returns a one-line summary.
func (s *StreamSource) Description() string {
	return s.desc
}

// Listen reads until EOF or ctx is cancelled.
func (s *StreamSource) Listen(ctx context.Context, handle func(core.Prediction)) error {
	rc, err := s.open()
	if err != nil {
		return err
	}

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()
	defer rc.Close()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("voice: read %s: %w", s.name, err)
					}
				default:
				}
				return nil
			}
			lineNo++

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			var p core.Prediction
			if err := json.Unmarshal([]byte(line), &p); err != nil {
				s.logger.Warn("voice: skipping bad line", "source", s.name, "line", lineNo, "err", err)
				continue
			}
			handle(p)

			if s.interval > 0 {
				select {
				case <-time.After(s.interval):
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func loggerOr(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
