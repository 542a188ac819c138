package inmemory

import (
	"testing"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
)

var _ ports.ActionMetrics = (*Recorder)(nil)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordSuccess(game.ActionPlant)
	r.RecordSuccess(game.ActionPlant)
	r.RecordRefusal(game.ActionPlant)
	r.RecordRefusal(game.ActionPump)
	r.RecordFailure(game.ActionMove)

	s := r.Snapshot()
	if s.ActionTotal != 5 {
		t.Fatalf("expected total 5, got %d", s.ActionTotal)
	}
	if s.ActionSuccess != 2 {
		t.Fatalf("expected success 2, got %d", s.ActionSuccess)
	}
	if s.ActionRefusal != 2 {
		t.Fatalf("expected refusal 2, got %d", s.ActionRefusal)
	}
	if s.ActionFailure != 1 {
		t.Fatalf("expected failure 1, got %d", s.ActionFailure)
	}
	plant := s.ByActionType[string(game.ActionPlant)]
	if plant.Success != 2 || plant.Refusal != 1 {
		t.Fatalf("plant outcomes mismatch: got=%+v", plant)
	}
	if s.ByActionType[string(game.ActionMove)].Failure != 1 {
		t.Fatalf("expected move failure count 1")
	}

	r.RecordSuccess(game.ActionPump)
	if s.ByActionType[string(game.ActionPump)].Success != 0 {
		t.Fatalf("snapshot must not alias recorder state")
	}
}
