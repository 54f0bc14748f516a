package voice

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/voice-snake/internal/core"
	"github.com/vovakirdan/voice-snake/internal/registry"
)

func collect() (func(core.Prediction), <-chan core.Prediction) {
	ch := make(chan core.Prediction, 16)
	return func(p core.Prediction) { ch <- p }, ch
}

func receive(t *testing.T, ch <-chan core.Prediction) core.Prediction {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a prediction")
		return core.Prediction{}
	}
}

func TestSourcesRegistered(t *testing.T) {
	for _, name := range []string{"ws", "stdin", "file"} {
		if !registry.Exists(name) {
			t.Errorf("source %q should be registered", name)
		}
	}
}

func TestWebsocketHandler(t *testing.T) {
	src := NewWebsocketSource(registry.Options{Logger: quietLogger()})
	handle, got := collect()

	srv := httptest.NewServer(src.Handler(handle))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	frames := []string{
		`{"labels":["up","down"],"scores":[0.9,0.1]}`,
		`not json`,
		`{"labels":["left"],"scores":[0.8]}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}

	p := receive(t, got)
	if label, _, _ := p.Best(); label != "up" {
		t.Errorf("first label = %q, expected up", label)
	}
	p = receive(t, got)
	if label, _, _ := p.Best(); label != "left" {
		t.Errorf("second label = %q, expected left (bad frame skipped)", label)
	}
}

func TestWebsocketListen(t *testing.T) {
	src := NewWebsocketSource(registry.Options{Addr: "127.0.0.1:0", Logger: quietLogger()})
	handle, got := collect()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Listen(ctx, handle) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("source did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+src.Addr().String()+DefaultPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(core.Prediction{Labels: []string{"right"}, Scores: []float64{0.99}}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	receive(t, got)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen after cancel = %v, expected nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestWebsocketListenBindError(t *testing.T) {
	src := NewWebsocketSource(registry.Options{Addr: "256.0.0.1:99999", Logger: quietLogger()})
	if err := src.Listen(context.Background(), func(core.Prediction) {}); err == nil {
		t.Error("expected a listen error for an invalid address")
	}
}

func TestReaderSource(t *testing.T) {
	input := strings.Join([]string{
		`{"labels":["up"],"scores":[0.9]}`,
		``,
		`{broken`,
		`{"labels":["down"],"scores":[0.8]}`,
	}, "\n")

	src := NewReaderSource("test", strings.NewReader(input), quietLogger())
	handle, got := collect()

	if err := src.Listen(context.Background(), handle); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if n := len(got); n != 2 {
		t.Fatalf("received %d predictions, expected 2", n)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	data := `{"labels":["left"],"scores":[0.9]}` + "\n" + `{"labels":["up"],"scores":[0.9]}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(registry.Options{File: path, Interval: time.Millisecond, Logger: quietLogger()})
	handle, got := collect()

	if err := src.Listen(context.Background(), handle); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if label, _, _ := receive(t, got).Best(); label != "left" {
		t.Errorf("first label = %q, expected left", label)
	}
	if label, _, _ := receive(t, got).Best(); label != "up" {
		t.Errorf("second label = %q, expected up", label)
	}
}

func TestFileSourceErrors(t *testing.T) {
	noPath := NewFileSource(registry.Options{Logger: quietLogger()})
	if err := noPath.Listen(context.Background(), func(core.Prediction) {}); err == nil {
		t.Error("expected an error without a path")
	}

	missing := NewFileSource(registry.Options{File: filepath.Join(t.TempDir(), "nope"), Logger: quietLogger()})
	if err := missing.Listen(context.Background(), func(core.Prediction) {}); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestStreamSourceCancel(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	src := NewReaderSource("pipe", r, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Listen(ctx, func(core.Prediction) {}) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen after cancel = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
