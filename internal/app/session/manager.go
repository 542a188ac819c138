// Package session keeps the one live simulation the server exposes and
// replaces it on Initialize.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"timeherosim/internal/app/journal"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/sim"
)

var ErrNoSession = errors.New("simulation not initialized")

type InitRequest struct {
	Persona string `json:"persona,omitempty"`
	MaxDays int    `json:"max_days,omitempty"`
	// Resume continues the latest snapshot of this run id.
	Resume string `json:"resume,omitempty"`
}

type Manager struct {
	Base     sim.Config
	Interval time.Duration
	Metrics  ports.ActionMetrics
	// Journal is optional; without it runs are not persisted.
	Journal *journal.Journal
	Logger  *slog.Logger

	mu        sync.Mutex
	cur       *live
	listeners []func(*sim.Engine)
}

type live struct {
	runID  string
	runner *sim.Runner
	cancel context.CancelFunc
	done   chan struct{}
}

// OnSession registers fn to be called with every new engine before its
// runner starts.
func (m *Manager) OnSession(fn func(*sim.Engine)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Initialize stops the current run, if any, and starts a paused one.
func (m *Manager) Initialize(ctx context.Context, req InitRequest) (string, error) {
	cfg := m.Base
	cfg.RunID = ""
	if req.Persona != "" {
		cfg.Persona = req.Persona
	}
	if req.MaxDays > 0 {
		cfg.MaxDays = req.MaxDays
	}
	if req.Resume != "" {
		if m.Journal == nil {
			return "", fmt.Errorf("%w: resume needs persistent storage", sim.ErrInvalidConfig)
		}
		cfg.RunID = req.Resume
	}
	if cfg.Logger == nil {
		cfg.Logger = m.logger()
	}

	engine, err := sim.Initialize(cfg, m.Metrics)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if m.Journal != nil {
		if req.Resume != "" {
			if err := m.Journal.Resume(runCtx, req.Resume, engine); err != nil {
				cancel()
				return "", err
			}
		}
		if err := m.Journal.Attach(runCtx, engine); err != nil {
			cancel()
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fn := range m.listeners {
		fn(engine)
	}
	m.stopLocked()

	next := &live{
		runID:  engine.RunID(),
		runner: sim.NewRunner(engine, m.Interval),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(next.done)
		next.runner.Run(runCtx)
	}()
	m.cur = next
	m.logger().Info("session started", "run_id", engine.RunID(), "resumed", req.Resume != "")
	return engine.RunID(), nil
}

// Runner returns the live runner.
func (m *Manager) Runner() (*sim.Runner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return nil, ErrNoSession
	}
	return m.cur.runner, nil
}

func (m *Manager) RunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ""
	}
	return m.cur.runID
}

// Close stops the live runner and waits for it to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.cur == nil {
		return
	}
	m.cur.cancel()
	<-m.cur.done
	m.cur = nil
}
