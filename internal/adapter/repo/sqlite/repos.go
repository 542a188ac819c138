package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
)

type runRow struct {
	RunID     string    `db:"run_id"`
	Persona   string    `db:"persona"`
	Status    string    `db:"status"`
	Reason    string    `db:"reason"`
	Summary   string    `db:"summary"`
	StartedAt time.Time `db:"started_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r runRow) record() ports.RunRecord {
	return ports.RunRecord(r)
}

type RunRepo struct {
	db *DB
}

func (r RunRepo) Create(ctx context.Context, run ports.RunRecord) error {
	if run.Status == "" {
		run.Status = ports.RunStatusRunning
	}
	return insertOnce(ctx, r.db.ext(ctx), `INSERT INTO sim_runs
		(run_id, persona, status, reason, summary, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(run_id) DO NOTHING`,
		run.RunID, run.Persona, run.Status, run.Reason, run.Summary, run.StartedAt.UTC(), run.UpdatedAt.UTC())
}

func (r RunRepo) Get(ctx context.Context, runID string) (ports.RunRecord, error) {
	var row runRow
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &row, "SELECT * FROM sim_runs WHERE run_id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.RunRecord{}, err
	}
	return row.record(), nil
}

func (r RunRepo) Complete(ctx context.Context, runID, reason, summary string, at time.Time) error {
	res, err := r.db.ext(ctx).ExecContext(ctx,
		"UPDATE sim_runs SET status = ?, reason = ?, summary = ?, updated_at = ? WHERE run_id = ?",
		ports.RunStatusCompleted, reason, summary, at.UTC(), runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []runRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows,
		"SELECT * FROM sim_runs ORDER BY started_at DESC, rowid DESC LIMIT ?", limit); err != nil {
		return nil, err
	}
	out := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

type snapshotRow struct {
	RunID   string    `db:"run_id"`
	Tick    int64     `db:"tick"`
	Day     int       `db:"day"`
	Payload []byte    `db:"payload"`
	SavedAt time.Time `db:"saved_at"`
}

type SnapshotRepo struct {
	db *DB
}

func (r SnapshotRepo) Save(ctx context.Context, snap ports.SnapshotRecord) error {
	return insertOnce(ctx, r.db.ext(ctx), `INSERT INTO sim_snapshots
		(run_id, tick, day, payload, saved_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT(run_id, tick) DO NOTHING`,
		snap.RunID, snap.Tick, snap.Day, snap.Payload, snap.SavedAt.UTC())
}

func (r SnapshotRepo) Latest(ctx context.Context, runID string) (ports.SnapshotRecord, error) {
	var row snapshotRow
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &row,
		"SELECT * FROM sim_snapshots WHERE run_id = ? ORDER BY tick DESC LIMIT 1", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.SnapshotRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.SnapshotRecord{}, err
	}
	return ports.SnapshotRecord(row), nil
}

func (r SnapshotRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]ports.SnapshotRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []snapshotRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows,
		"SELECT * FROM sim_snapshots WHERE run_id = ? ORDER BY tick DESC LIMIT ?", runID, limit); err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	out := make([]ports.SnapshotRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.SnapshotRecord(row))
	}
	return out, nil
}

type eventRow struct {
	Type        string `db:"type"`
	Description string `db:"description"`
	OccurredAt  int    `db:"occurred_at"`
	DataJSON    string `db:"data_json"`
}

type EventRepo struct {
	db *DB
}

func (r EventRepo) Append(ctx context.Context, runID string, events []game.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		for _, e := range events {
			data, err := json.Marshal(e.Data)
			if err != nil {
				return err
			}
			if _, err := r.db.ext(ctx).ExecContext(ctx,
				"INSERT INTO sim_events (run_id, type, description, occurred_at, data_json) VALUES (?, ?, ?, ?, ?)",
				runID, e.Type, e.Description, e.OccurredAt, string(data)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByRunID returns the latest limit events in insertion order.
func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]game.DomainEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []eventRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows,
		"SELECT type, description, occurred_at, data_json FROM sim_events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit); err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	out := make([]game.DomainEvent, 0, len(rows))
	for _, row := range rows {
		var data map[string]any
		_ = json.Unmarshal([]byte(row.DataJSON), &data)
		out = append(out, game.DomainEvent{
			Type:        row.Type,
			Description: row.Description,
			OccurredAt:  row.OccurredAt,
			Data:        data,
		})
	}
	return out, nil
}
