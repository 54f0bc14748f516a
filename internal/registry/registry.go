// Package registry provides a global registry for voice command sources.
// Sources register themselves in init() functions, allowing the CLI to
// pick one by name without hardcoded dependencies.
package registry

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/voice-snake/internal/core"
)

// Source delivers classifier predictions from somewhere outside the game:
// a browser over websocket, a pipe, a recorded session.
type Source interface {
	// Name returns the identifier used on the command line (e.g. "ws").
	Name() string

	// Description returns a one-line human-readable summary.
	Description() string

	// Listen delivers predictions to handle until ctx is cancelled or the
	// source is exhausted. handle may be called from several goroutines.
	// Returns nil on cancellation or a clean end of input.
	Listen(ctx context.Context, handle func(core.Prediction)) error
}

// Options carries everything a factory may need. Each source reads only the
// fields it cares about.
type Options struct {
	Addr     string        // Listen address for network sources
	Path     string        // HTTP path for network sources
	File     string        // Recording to replay
	Interval time.Duration // Delay between replayed frames
	Stdin    io.Reader     // Input for the stdin source
	Logger   *log.Logger
}

// SourceInfo contains metadata about a registered source.
type SourceInfo struct {
	Name        string
	Description string
}

// Factory creates a source from options.
type Factory func(opts Options) Source

var (
	factories    = make(map[string]Factory)
	descriptions = make(map[string]string)
	mu           sync.RWMutex
)

// Register adds a source factory and its one-line description to the
// registry. The factory is not called until Create.
// Panics if a source with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registry: source %q already registered", name))
	}

	factories[name] = f
	descriptions[name] = description
}

// List returns information about all registered sources, sorted by name.
func List() []SourceInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SourceInfo, 0, len(factories))
	for name := range factories {
		result = append(result, SourceInfo{
			Name:        name,
			Description: descriptions[name],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a source by name.
func Create(name string, opts Options) (Source, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown source %q", name)
	}

	return f(opts), nil
}

// Exists checks if a source with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
