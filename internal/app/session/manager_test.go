package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"timeherosim/internal/adapter/repo/memory"
	"timeherosim/internal/app/ai"
	"timeherosim/internal/app/journal"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/sim"
)

func newManager(j *journal.Journal) *Manager {
	return &Manager{
		Base:     sim.DefaultConfig(),
		Interval: time.Millisecond,
		Journal:  j,
	}
}

func TestManager_RunnerBeforeInitialize(t *testing.T) {
	m := newManager(nil)
	if _, err := m.Runner(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got=%v", err)
	}
}

func TestManager_InitializeReplacesRun(t *testing.T) {
	ctx := context.Background()
	m := newManager(nil)
	defer m.Close()

	var seen []string
	m.OnSession(func(e *sim.Engine) { seen = append(seen, e.RunID()) })

	first, err := m.Initialize(ctx, InitRequest{Persona: ai.PersonaSpeedrunner})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	r1, _ := m.Runner()
	if _, err := r1.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}

	second, err := m.Initialize(ctx, InitRequest{MaxDays: 3})
	if err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if first == second {
		t.Fatalf("expected a new run id, got=%s twice", first)
	}
	if len(seen) != 2 || seen[1] != second {
		t.Fatalf("listeners mismatch: got=%v", seen)
	}
	if _, err := r1.Status(ctx); !errors.Is(err, sim.ErrRunnerClosed) {
		t.Fatalf("old runner should be closed, got=%v", err)
	}

	r2, _ := m.Runner()
	view, err := r2.GetState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if view.Stats.Ticks != 0 || view.Stats.Persona != ai.PersonaCasual {
		t.Fatalf("fresh run mismatch: got=%+v", view.Stats)
	}
}

func TestManager_InitializeRejectsBadConfig(t *testing.T) {
	m := newManager(nil)
	m.Base.TickMinutes = 0
	if _, err := m.Initialize(context.Background(), InitRequest{}); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got=%v", err)
	}
	if m.RunID() != "" {
		t.Fatalf("failed initialize should not leave a session")
	}
}

func TestManager_ResumeFromJournal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	j := &journal.Journal{
		Runs:      memory.NewRunRepo(store),
		Snapshots: memory.NewSnapshotRepo(store),
		Events:    memory.NewEventRepo(store),
		TxManager: memory.NewTxManager(store),
	}
	m := newManager(j)
	defer m.Close()

	if _, err := m.Initialize(ctx, InitRequest{Resume: "missing"}); !errors.Is(err, journal.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got=%v", err)
	}

	runID, err := m.Initialize(ctx, InitRequest{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	r, _ := m.Runner()
	for i := 0; i < 3; i++ {
		if _, err := r.Step(ctx); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	payload, err := journal.JSONCodec{}.Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := j.Snapshots.Save(ctx, ports.SnapshotRecord{RunID: runID, Tick: snap.Tick, Payload: payload}); err != nil {
		t.Fatalf("save: %v", err)
	}

	resumed, err := m.Initialize(ctx, InitRequest{Resume: runID})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed != runID {
		t.Fatalf("run id mismatch: got=%s want=%s", resumed, runID)
	}
	r, _ = m.Runner()
	st, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Tick != 3 {
		t.Fatalf("tick mismatch: got=%d want=3", st.Tick)
	}
}

func TestManager_ResumeNeedsJournal(t *testing.T) {
	m := newManager(nil)
	if _, err := m.Initialize(context.Background(), InitRequest{Resume: "r1"}); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got=%v", err)
	}
}
