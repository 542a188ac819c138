package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timeherosim/internal/adapter/snapshot"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/session"
	"timeherosim/internal/app/sim"
	"timeherosim/internal/config"
)

func TestOpenStorage_UnknownDriver(t *testing.T) {
	if _, err := openStorage(context.Background(), config.Storage{Driver: "mongo"}, nil); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got=%v", err)
	}
}

func TestOpenStorage_SnapshotDirUsesFileStore(t *testing.T) {
	store, err := openStorage(context.Background(), config.Storage{Driver: config.StoreMemory, SnapshotDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.close()
	if _, ok := store.journal.Snapshots.(*snapshot.FileStore); !ok {
		t.Fatalf("expected file snapshot store, got=%T", store.journal.Snapshots)
	}
	if _, ok := store.journal.Codec.(snapshot.Codec); !ok {
		t.Fatalf("expected zstd codec, got=%T", store.journal.Codec)
	}
}

func TestLastRun_NoRuns(t *testing.T) {
	store, err := openStorage(context.Background(), config.Storage{Driver: config.StoreMemory}, nil)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	if _, err := store.lastRun(context.Background()); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestBootstrap_ResumeFromSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sim.db")
	sc := config.Storage{Driver: config.StoreSQLite, SQLitePath: path}

	store, err := openStorage(ctx, sc, nil)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	sessions := &session.Manager{Base: sim.DefaultConfig(), Interval: time.Millisecond, Journal: store.journal}
	sessions.OnSession(func(e *sim.Engine) {
		if err := store.remember(ctx, e.RunID()); err != nil {
			t.Errorf("remember: %v", err)
		}
	})
	runID, err := sessions.Initialize(ctx, session.InitRequest{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	r, _ := sessions.Runner()
	if _, err := r.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}
	if _, err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	sessions.Close()
	if err := store.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = openStorage(ctx, sc, nil)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	defer store.close()
	got, err := store.lastRun(ctx)
	if err != nil || got != runID {
		t.Fatalf("last run mismatch: got=%q err=%v want=%q", got, err, runID)
	}

	resumed := &session.Manager{Base: sim.DefaultConfig(), Interval: time.Millisecond, Journal: store.journal}
	defer resumed.Close()
	simCfg := config.Default().Simulation
	simCfg.Resume = true
	simCfg.AutoStart = true
	if err := bootstrap(ctx, resumed, store, simCfg); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if resumed.RunID() != runID {
		t.Fatalf("resumed run mismatch: got=%q want=%q", resumed.RunID(), runID)
	}
	r, _ = resumed.Runner()
	view, err := r.GetState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if view.Complete == nil || view.Complete.Reason != sim.ReasonManual {
		t.Fatalf("expected completed run after resume, got=%+v", view.Complete)
	}
}

func TestBootstrap_NothingToDo(t *testing.T) {
	sessions := &session.Manager{Base: sim.DefaultConfig()}
	if err := bootstrap(context.Background(), sessions, storage{}, config.Simulation{}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if sessions.RunID() != "" {
		t.Fatalf("expected no session")
	}
}
