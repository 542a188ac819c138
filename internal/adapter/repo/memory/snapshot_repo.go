package memory

import (
	"context"

	"timeherosim/internal/app/ports"
)

type SnapshotRepo struct {
	store *Store
}

func NewSnapshotRepo(store *Store) SnapshotRepo {
	return SnapshotRepo{store: store}
}

func (r SnapshotRepo) Save(ctx context.Context, snap ports.SnapshotRecord) error {
	defer r.store.write(ctx)()
	list := r.store.snapshots[snap.RunID]
	for _, existing := range list {
		if existing.Tick == snap.Tick {
			return ports.ErrConflict
		}
	}
	snap.Payload = append([]byte(nil), snap.Payload...)
	list = append(list, snap)
	for i := len(list) - 1; i > 0 && list[i].Tick < list[i-1].Tick; i-- {
		list[i], list[i-1] = list[i-1], list[i]
	}
	r.store.snapshots[snap.RunID] = list
	return nil
}

func (r SnapshotRepo) Latest(ctx context.Context, runID string) (ports.SnapshotRecord, error) {
	defer r.store.read(ctx)()
	list := r.store.snapshots[runID]
	if len(list) == 0 {
		return ports.SnapshotRecord{}, ports.ErrNotFound
	}
	return list[len(list)-1], nil
}

// ListByRunID returns up to limit snapshots, oldest first.
func (r SnapshotRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]ports.SnapshotRecord, error) {
	defer r.store.read(ctx)()
	return limitTail(r.store.snapshots[runID], limit), nil
}
