package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"timeherosim/db/migrations"
	gormrepo "timeherosim/internal/adapter/repo/gorm"
	"timeherosim/internal/adapter/repo/memory"
	"timeherosim/internal/adapter/repo/sqlite"
	"timeherosim/internal/adapter/snapshot"
	"timeherosim/internal/app/journal"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/config"
)

const lastRunKey = "last_run_id"

type storage struct {
	journal *journal.Journal
	// remember and recall keep the live run id where the backend can.
	remember func(ctx context.Context, runID string) error
	recall   func(ctx context.Context) (string, error)
	close    func() error
}

// lastRun finds the run to resume: the remembered one, else the newest.
func (s storage) lastRun(ctx context.Context) (string, error) {
	if s.recall != nil {
		runID, err := s.recall(ctx)
		if err == nil {
			return runID, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return "", err
		}
	}
	runs, err := s.journal.Runs.List(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no run to resume", ports.ErrNotFound)
	}
	return runs[0].RunID, nil
}

func openStorage(ctx context.Context, sc config.Storage, logger *slog.Logger) (storage, error) {
	var out storage
	switch sc.Driver {
	case config.StoreMemory:
		store := memory.NewStore()
		out = storage{
			journal: &journal.Journal{
				Runs:      memory.NewRunRepo(store),
				Snapshots: memory.NewSnapshotRepo(store),
				Events:    memory.NewEventRepo(store),
				TxManager: memory.NewTxManager(store),
			},
			close: func() error { return nil },
		}
	case config.StoreSQLite:
		db, err := sqlite.Open(sc.SQLitePath)
		if err != nil {
			return out, err
		}
		out = storage{
			journal: &journal.Journal{
				Runs:      db.Runs(),
				Snapshots: db.Snapshots(),
				Events:    db.Events(),
				TxManager: db,
			},
			remember: func(ctx context.Context, runID string) error {
				return db.SaveMeta(ctx, lastRunKey, runID)
			},
			recall: func(ctx context.Context) (string, error) {
				return db.GetMeta(ctx, lastRunKey)
			},
			close: db.Close,
		}
	case config.StorePostgres:
		db, err := gormrepo.OpenPostgres(sc.DSN)
		if err != nil {
			return out, err
		}
		if sc.Migrations != "" {
			err = gormrepo.ApplyMigrations(ctx, db, sc.Migrations)
		} else {
			err = gormrepo.ApplyMigrationsFS(ctx, db, migrations.FS)
		}
		if err != nil {
			return out, fmt.Errorf("apply migrations: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return out, err
		}
		out = storage{
			journal: &journal.Journal{
				Runs:      gormrepo.NewRunRepo(db),
				Snapshots: gormrepo.NewSnapshotRepo(db),
				Events:    gormrepo.NewEventRepo(db),
				TxManager: gormrepo.NewTxManager(db),
			},
			close: sqlDB.Close,
		}
	default:
		return out, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalid, sc.Driver)
	}

	if sc.SnapshotDir != "" {
		out.journal.Snapshots = snapshot.NewFileStore(sc.SnapshotDir)
		out.journal.Codec = snapshot.Codec{}
	}
	out.journal.Logger = logger
	return out, nil
}
