package memory

import (
	"context"
	"time"

	"timeherosim/internal/app/ports"
)

type RunRepo struct {
	store *Store
}

func NewRunRepo(store *Store) RunRepo {
	return RunRepo{store: store}
}

func (r RunRepo) Create(ctx context.Context, run ports.RunRecord) error {
	defer r.store.write(ctx)()
	if _, exists := r.store.runs[run.RunID]; exists {
		return ports.ErrConflict
	}
	if run.Status == "" {
		run.Status = ports.RunStatusRunning
	}
	r.store.runs[run.RunID] = run
	r.store.runOrder = append(r.store.runOrder, run.RunID)
	return nil
}

func (r RunRepo) Get(ctx context.Context, runID string) (ports.RunRecord, error) {
	defer r.store.read(ctx)()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	return run, nil
}

func (r RunRepo) Complete(ctx context.Context, runID, reason, summary string, at time.Time) error {
	defer r.store.write(ctx)()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.ErrNotFound
	}
	run.Status = ports.RunStatusCompleted
	run.Reason = reason
	run.Summary = summary
	run.UpdatedAt = at
	r.store.runs[runID] = run
	return nil
}

// List returns the most recently created runs first.
func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	defer r.store.read(ctx)()
	out := make([]ports.RunRecord, 0, len(r.store.runOrder))
	for i := len(r.store.runOrder) - 1; i >= 0; i-- {
		out = append(out, r.store.runs[r.store.runOrder[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
