package memory

import (
	"context"

	"timeherosim/internal/domain/game"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, runID string, events []game.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	defer r.store.write(ctx)()
	r.store.events[runID] = append(r.store.events[runID], events...)
	return nil
}

// ListByRunID returns the latest limit events in occurrence order.
func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]game.DomainEvent, error) {
	defer r.store.read(ctx)()
	return limitTail(r.store.events[runID], limit), nil
}
