package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"

	"gorm.io/gorm"
)

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TIMEHERO_DB_DSN")
	if dsn == "" {
		t.Skip("TIMEHERO_DB_DSN is required for integration test")
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, "../../../../db/migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func resetRun(db *gorm.DB, runID string) {
	_ = db.Exec("DELETE FROM sim_events WHERE run_id = ?", runID).Error
	_ = db.Exec("DELETE FROM sim_snapshots WHERE run_id = ?", runID).Error
	_ = db.Exec("DELETE FROM sim_runs WHERE run_id = ?", runID).Error
}

func TestRunRepo_CreateConflictAndComplete(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	runID := "it-run-repo"
	resetRun(db, runID)

	repo := NewRunRepo(db)
	now := time.Unix(1700000000, 0).UTC()
	run := ports.RunRecord{RunID: runID, Persona: "casual", StartedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, run); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}
	if err := repo.Complete(ctx, runID, "victory", "cleared dark forest", now.Add(time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := repo.Get(ctx, runID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ports.RunStatusCompleted || got.Reason != "victory" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if _, err := repo.Get(ctx, "it-run-missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestSnapshotRepo_LatestAndList(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	runID := "it-snapshot-repo"
	resetRun(db, runID)
	if err := NewRunRepo(db).Create(ctx, ports.RunRecord{RunID: runID, Persona: "casual", StartedAt: time.Now(), UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	repo := NewSnapshotRepo(db)
	for _, tick := range []int64{144, 288} {
		if err := repo.Save(ctx, ports.SnapshotRecord{RunID: runID, Tick: tick, Day: int(tick / 144), Payload: []byte("{}"), SavedAt: time.Now()}); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}
	if err := repo.Save(ctx, ports.SnapshotRecord{RunID: runID, Tick: 288, Payload: []byte("{}"), SavedAt: time.Now()}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}
	latest, err := repo.Latest(ctx, runID)
	if err != nil || latest.Tick != 288 {
		t.Fatalf("latest mismatch: tick=%d err=%v", latest.Tick, err)
	}
	list, err := repo.ListByRunID(ctx, runID, 0)
	if err != nil || len(list) != 2 || list[0].Tick != 144 {
		t.Fatalf("list mismatch: %+v err=%v", list, err)
	}
}

func TestEventRepo_AppendAndListByRunID(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	runID := "it-event-repo"
	resetRun(db, runID)

	repo := NewEventRepo(db)
	if err := repo.Append(ctx, runID, []game.DomainEvent{
		{Type: "e-old", OccurredAt: 100, Data: map[string]any{"k": "v1"}},
		{Type: "e-new", OccurredAt: 200, Data: map[string]any{"k": "v2"}},
	}); err != nil {
		t.Fatalf("append events: %v", err)
	}

	list, err := repo.ListByRunID(ctx, runID, 1)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(list) != 1 || list[0].Type != "e-new" || list[0].Data["k"] != "v2" {
		t.Fatalf("expected only latest event, got=%+v", list)
	}
	all, err := repo.ListByRunID(ctx, runID, 0)
	if err != nil {
		t.Fatalf("list all events: %v", err)
	}
	if len(all) != 2 || all[0].Type != "e-old" {
		t.Fatalf("expected 2 events oldest first, got=%+v", all)
	}
}

func TestTxManager_RunInTxCommitAndRollback(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	runID := "it-tx-manager"
	resetRun(db, runID)
	resetRun(db, runID+"-rb")

	txManager := NewTxManager(db)
	runs := NewRunRepo(db)
	now := time.Now()

	commitErr := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return runs.Create(txCtx, ports.RunRecord{RunID: runID, Persona: "casual", StartedAt: now, UpdatedAt: now})
	})
	if commitErr != nil {
		t.Fatalf("commit tx failed: %v", commitErr)
	}
	if _, err := runs.Get(ctx, runID); err != nil {
		t.Fatalf("expected committed run exists, got err=%v", err)
	}

	rollbackErr := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := runs.Create(txCtx, ports.RunRecord{RunID: runID + "-rb", Persona: "casual", StartedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	if rollbackErr == nil {
		t.Fatalf("expected rollback error")
	}
	if _, err := runs.Get(ctx, runID+"-rb"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected rollback to remove run, got err=%v", err)
	}
}
