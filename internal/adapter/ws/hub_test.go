package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"timeherosim/internal/app/sim"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitWatchers(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Watchers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("watchers mismatch: got=%d want=%d", h.Watchers(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_StreamsEngineTicks(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitWatchers(t, hub, 1)

	engine, err := sim.Initialize(sim.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	hub.Attach(engine)
	engine.Tick()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f struct {
		Type  string `json:"type"`
		RunID string `json:"run_id"`
		Data  struct {
			Tick int64 `json:"tick"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if f.Type != FrameTick || f.RunID != engine.RunID() || f.Data.Tick != 1 {
		t.Fatalf("frame mismatch: got=%+v", f)
	}
}

func TestHub_DropsWatcherOnClose(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitWatchers(t, hub, 1)
	conn.Close()
	waitWatchers(t, hub, 0)
}

func TestHub_IdleWatcherSurvivesReadWindow(t *testing.T) {
	hub := NewHub(nil)
	hub.readWait = 150 * time.Millisecond
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	waitWatchers(t, hub, 1)

	time.Sleep(4 * hub.readWait)
	if got := hub.Watchers(); got != 1 {
		t.Fatalf("idle watcher dropped: got=%d want=1", got)
	}
}

func TestHub_PublishWithoutWatchers(t *testing.T) {
	hub := NewHub(nil)
	for i := 0; i < queueLength*2; i++ {
		hub.Publish(Frame{Type: FrameDay, Data: map[string]int{"day": i}})
	}
}
