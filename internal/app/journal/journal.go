// Package journal persists a running simulation: the run record, every
// domain event and a snapshot per sim-day plus the final one.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/sim"
)

var ErrNoSnapshot = errors.New("no snapshot for run")

type Codec interface {
	Encode(snap sim.Snapshot) ([]byte, error)
	Decode(payload []byte) (sim.Snapshot, error)
}

type JSONCodec struct{}

func (JSONCodec) Encode(snap sim.Snapshot) ([]byte, error) { return json.Marshal(snap) }

func (JSONCodec) Decode(payload []byte) (sim.Snapshot, error) {
	var snap sim.Snapshot
	err := json.Unmarshal(payload, &snap)
	return snap, err
}

type Journal struct {
	Runs      ports.RunRepository
	Snapshots ports.SnapshotRepository
	Events    ports.EventRepository
	TxManager ports.TxManager
	Codec     Codec
	Logger    *slog.Logger
	Now       func() time.Time
}

func (j Journal) codec() Codec {
	if j.Codec == nil {
		return JSONCodec{}
	}
	return j.Codec
}

func (j Journal) now() time.Time {
	if j.Now == nil {
		return time.Now()
	}
	return j.Now()
}

func (j Journal) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

// Attach records the run and subscribes to the engine's hooks. Hook
// failures are logged and never stop the simulation.
func (j Journal) Attach(ctx context.Context, e *sim.Engine) error {
	at := j.now()
	cfg := e.Config()
	err := j.Runs.Create(ctx, ports.RunRecord{
		RunID:     e.RunID(),
		Persona:   cfg.Persona,
		Status:    ports.RunStatusRunning,
		StartedAt: at,
		UpdatedAt: at,
	})
	if err != nil && !errors.Is(err, ports.ErrConflict) {
		return fmt.Errorf("record run: %w", err)
	}

	log := j.logger().With("run_id", e.RunID())
	checkpointDue := false
	e.OnDay(func(int) { checkpointDue = true })
	e.OnComplete(func(c sim.Completion) {
		if err := j.finish(ctx, e, c); err != nil {
			log.Warn("persist completion failed", "err", err)
		}
	})
	e.OnTick(func(res sim.TickResult) {
		if len(res.Events) > 0 {
			if err := j.Events.Append(ctx, e.RunID(), res.Events); err != nil {
				log.Warn("persist events failed", "tick", res.Tick, "err", err)
			}
		}
		if checkpointDue && !res.IsComplete {
			checkpointDue = false
			if err := j.Checkpoint(ctx, e); err != nil {
				log.Warn("checkpoint failed", "tick", res.Tick, "err", err)
			}
		}
	})
	return nil
}

func (j Journal) record(e *sim.Engine) (ports.SnapshotRecord, error) {
	snap := e.Snapshot()
	payload, err := j.codec().Encode(snap)
	if err != nil {
		return ports.SnapshotRecord{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return ports.SnapshotRecord{
		RunID:   snap.RunID,
		Tick:    snap.Tick,
		Day:     snap.State.Time.Day,
		Payload: payload,
		SavedAt: j.now(),
	}, nil
}

// Checkpoint saves the engine's current snapshot.
func (j Journal) Checkpoint(ctx context.Context, e *sim.Engine) error {
	rec, err := j.record(e)
	if err != nil {
		return err
	}
	return j.Snapshots.Save(ctx, rec)
}

func (j Journal) finish(ctx context.Context, e *sim.Engine, c sim.Completion) error {
	rec, err := j.record(e)
	if err != nil {
		return err
	}
	return j.TxManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := j.Snapshots.Save(ctx, rec); err != nil && !errors.Is(err, ports.ErrConflict) {
			return err
		}
		return j.Runs.Complete(ctx, e.RunID(), c.Reason, c.Summary, j.now())
	})
}

// Resume loads the latest snapshot of runID into e.
func (j Journal) Resume(ctx context.Context, runID string, e *sim.Engine) error {
	rec, err := j.Snapshots.Latest(ctx, runID)
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNoSnapshot, runID)
	}
	if err != nil {
		return err
	}
	snap, err := j.codec().Decode(rec.Payload)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return e.Restore(snap)
}
