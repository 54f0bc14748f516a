package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/registry"
)

// Websocket source defaults.
const (
	DefaultAddr = ":8765"
	DefaultPath = "/predict"
)

func init() {
	desc := fmt.Sprintf("websocket server for browser classifiers (default ws://%s%s)", DefaultAddr, DefaultPath)
	registry.Register("ws", desc, func(opts registry.Options) registry.Source {
		return NewWebsocketSource(opts)
	})
}

// WebsocketSource accepts prediction frames pushed by a browser classifier.
// Each text message is a JSON object {"labels": [...], "scores": [...]}.
// Any number of clients may connect.
type WebsocketSource struct {
	addr     string
	path     string
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	bound net.Addr
}

// NewWebsocketSource creates the source. Empty options use DefaultAddr and
// DefaultPath.
func NewWebsocketSource(opts registry.Options) *WebsocketSource {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &WebsocketSource{
		addr:   addr,
		path:   path,
		logger: logger,
		upgrader: websocket.Upgrader{
			// The classifier page is usually served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Name returns "ws".
func (s *WebsocketSource) Name() string {
	return "ws"
}

// Description returns a one-line summary.
func (s *WebsocketSource) Description() string {
	return fmt.Sprintf("websocket server for browser classifiers (ws://%s%s)", s.addr, s.path)
}

// Addr returns the bound address once Listen has started, or nil.
func (s *WebsocketSource) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Handler returns the HTTP handler that upgrades clients and reads frames.
func (s *WebsocketSource) Handler(handle func(core.Prediction)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("voice: upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		s.track(conn, true)
		s.logger.Info("voice: client connected", "remote", r.RemoteAddr)

		defer func() {
			s.track(conn, false)
			conn.Close()
			s.logger.Info("voice: client disconnected", "remote", r.RemoteAddr)
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Warn("voice: read failed", "remote", r.RemoteAddr, "err", err)
				}
				return
			}

			var p core.Prediction
			if err := json.Unmarshal(data, &p); err != nil {
				s.logger.Debug("voice: bad frame", "remote", r.RemoteAddr, "err", err)
				continue
			}
			handle(p)
		}
	})
}

func (s *WebsocketSource) track(conn *websocket.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// Listen serves websocket clients until ctx is cancelled.
func (s *WebsocketSource) Listen(ctx context.Context, handle func(core.Prediction)) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("voice: listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle(s.path, s.Handler(handle))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeClients()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("voice: serve: %w", err)
	}
}

// closeClients drops hijacked connections, which Shutdown does not track.
func (s *WebsocketSource) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
