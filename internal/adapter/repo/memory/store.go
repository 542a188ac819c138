package memory

import (
	"context"
	"sync"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
)

// Store keeps every run in process memory. Repositories share one Store and
// one lock; TxManager holds the lock for the whole callback.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]ports.RunRecord
	runOrder  []string
	snapshots map[string][]ports.SnapshotRecord
	events    map[string][]game.DomainEvent
}

func NewStore() *Store {
	return &Store{
		runs:      make(map[string]ports.RunRecord),
		snapshots: make(map[string][]ports.SnapshotRecord),
		events:    make(map[string][]game.DomainEvent),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) read(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func limitTail[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return append([]T(nil), items...)
}
