// Package ws streams engine events to websocket watchers.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"timeherosim/internal/app/sim"
)

const (
	FrameTick     = "tick"
	FrameDay      = "day"
	FrameComplete = "complete"
	FrameError    = "error"
)

const (
	writeWait   = 5 * time.Second
	readWait    = 60 * time.Second
	queueLength = 64
)

// pingPeriod leaves half the read window for the pong to arrive.
func pingPeriod(wait time.Duration) time.Duration {
	return wait / 2
}

type Frame struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	Data  any    `json:"data,omitempty"`
}

// Hub fans frames out to every connected watcher. Slow watchers lose frames
// rather than stall the simulation.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	readWait time.Duration

	mu     sync.Mutex
	subs   map[uint64]chan []byte
	nextID atomic.Uint64
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readWait: readWait,
		subs:     map[uint64]chan []byte{},
	}
}

// Attach publishes the engine's hook events. Hooks run on the runner
// goroutine, so Publish never blocks.
func (h *Hub) Attach(e *sim.Engine) {
	runID := e.RunID()
	e.OnTick(func(res sim.TickResult) { h.Publish(Frame{Type: FrameTick, RunID: runID, Data: res}) })
	e.OnDay(func(day int) { h.Publish(Frame{Type: FrameDay, RunID: runID, Data: map[string]int{"day": day}}) })
	e.OnComplete(func(c sim.Completion) { h.Publish(Frame{Type: FrameComplete, RunID: runID, Data: c}) })
	e.OnError(func(err error) {
		h.Publish(Frame{Type: FrameError, RunID: runID, Data: map[string]string{"message": err.Error()}})
	})
}

func (h *Hub) Publish(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		h.log.Warn("encode frame failed", "type", f.Type, "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.subs {
		select {
		case out <- b:
		default:
		}
	}
}

func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	out := make(chan []byte, queueLength)
	h.mu.Lock()
	h.subs[id] = out
	h.mu.Unlock()
	return id, out
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, out := h.subscribe()
	defer h.unsubscribe(id)
	h.log.Debug("watcher connected", "id", id, "remote", r.RemoteAddr)

	// Watchers only answer pings; reading keeps the deadline moving and
	// detects the close.
	_ = conn.SetReadDeadline(time.Now().Add(h.readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readWait))
	})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(h.readWait))
		}
	}()

	ping := time.NewTicker(pingPeriod(h.readWait))
	defer ping.Stop()
	for {
		select {
		case <-closed:
			h.log.Debug("watcher disconnected", "id", id)
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
