package ports

import (
	"context"
	"time"

	"timeherosim/internal/domain/game"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
)

type RunRecord struct {
	RunID     string
	Persona   string
	Status    string
	Reason    string
	Summary   string
	StartedAt time.Time
	UpdatedAt time.Time
}

// SnapshotRecord holds an encoded engine snapshot. Payload is opaque to
// storage; Tick orders records within a run.
type SnapshotRecord struct {
	RunID   string
	Tick    int64
	Day     int
	Payload []byte
	SavedAt time.Time
}

type RunRepository interface {
	// Create fails with ErrConflict when the run id exists.
	Create(ctx context.Context, run RunRecord) error
	Get(ctx context.Context, runID string) (RunRecord, error)
	Complete(ctx context.Context, runID, reason, summary string, at time.Time) error
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

type SnapshotRepository interface {
	// Save fails with ErrConflict when a snapshot for the same tick exists.
	Save(ctx context.Context, snap SnapshotRecord) error
	Latest(ctx context.Context, runID string) (SnapshotRecord, error)
	ListByRunID(ctx context.Context, runID string, limit int) ([]SnapshotRecord, error)
}

type EventRepository interface {
	Append(ctx context.Context, runID string, events []game.DomainEvent) error
	ListByRunID(ctx context.Context, runID string, limit int) ([]game.DomainEvent, error)
}
