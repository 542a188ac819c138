package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sim.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var (
	_ ports.RunRepository      = RunRepo{}
	_ ports.SnapshotRepository = SnapshotRepo{}
	_ ports.EventRepository    = EventRepo{}
	_ ports.TxManager          = (*DB)(nil)
)

func TestRuns_CreateConflictComplete(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	runs := db.Runs()
	now := time.Unix(1700000000, 0)

	if err := runs.Create(ctx, ports.RunRecord{RunID: "r1", Persona: "casual", StartedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := runs.Create(ctx, ports.RunRecord{RunID: "r1", Persona: "casual", StartedAt: now, UpdatedAt: now}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}
	if err := runs.Complete(ctx, "r1", "bottleneck", "stuck on water", now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := runs.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ports.RunStatusCompleted || got.Reason != "bottleneck" || got.Persona != "casual" {
		t.Fatalf("run mismatch: got=%+v", got)
	}
	if _, err := runs.Get(ctx, "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	list, err := runs.List(ctx, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list mismatch: %+v err=%v", list, err)
	}
}

func TestSnapshots_SaveLatestAndTxRollback(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	snaps := db.Snapshots()

	for _, tick := range []int64{10, 30, 20} {
		if err := snaps.Save(ctx, ports.SnapshotRecord{RunID: "r1", Tick: tick, Day: 1, Payload: []byte{1, 2, 3}, SavedAt: time.Now()}); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}
	if err := snaps.Save(ctx, ports.SnapshotRecord{RunID: "r1", Tick: 30, Payload: []byte{9}, SavedAt: time.Now()}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if err := snaps.Save(ctx, ports.SnapshotRecord{RunID: "r1", Tick: 99, Payload: []byte{9}, SavedAt: time.Now()}); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	if err == nil {
		t.Fatalf("expected rollback error")
	}

	latest, err := snaps.Latest(ctx, "r1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Tick != 30 || len(latest.Payload) != 3 {
		t.Fatalf("latest mismatch: got=%+v", latest)
	}
	list, _ := snaps.ListByRunID(ctx, "r1", 2)
	if len(list) != 2 || list[0].Tick != 20 || list[1].Tick != 30 {
		t.Fatalf("list mismatch: got=%+v", list)
	}
}

func TestEvents_AppendListAndMeta(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	events := db.Events()

	if err := events.Append(ctx, "r1", []game.DomainEvent{
		{Type: "crop_planted", OccurredAt: 0, Data: map[string]any{"crop": "carrot"}},
		{Type: "crop_ready", OccurredAt: 60, Data: map[string]any{"plot": 0}},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := events.ListByRunID(ctx, "r1", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Type != "crop_ready" || got[0].Data["plot"] != 0.0 {
		t.Fatalf("tail mismatch: got=%+v", got)
	}

	if _, err := db.GetMeta(ctx, "last_run_id"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if err := db.SaveMeta(ctx, "last_run_id", "r1"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if v, _ := db.GetMeta(ctx, "last_run_id"); v != "r1" {
		t.Fatalf("meta mismatch: got=%s want=r1", v)
	}
}
