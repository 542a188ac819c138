package inmemory

import (
	"sync"

	"timeherosim/internal/domain/game"
)

type Outcomes struct {
	Success uint64 `json:"success"`
	Refusal uint64 `json:"refusal"`
	Failure uint64 `json:"failure"`
}

type Snapshot struct {
	ActionTotal   uint64              `json:"action_total"`
	ActionSuccess uint64              `json:"action_success"`
	ActionRefusal uint64              `json:"action_refusal"`
	ActionFailure uint64              `json:"action_failure"`
	ByActionType  map[string]Outcomes `json:"by_action_type"`
}

// Recorder counts routed actions. It is shared by every run of the process.
type Recorder struct {
	mu     sync.Mutex
	byType map[game.ActionType]*Outcomes
}

func NewRecorder() *Recorder {
	return &Recorder{
		byType: map[game.ActionType]*Outcomes{},
	}
}

func (r *Recorder) outcomes(t game.ActionType) *Outcomes {
	o, ok := r.byType[t]
	if !ok {
		o = &Outcomes{}
		r.byType[t] = o
	}
	return o
}

func (r *Recorder) RecordSuccess(t game.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes(t).Success++
}

func (r *Recorder) RecordRefusal(t game.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes(t).Refusal++
}

func (r *Recorder) RecordFailure(t game.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes(t).Failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{ByActionType: make(map[string]Outcomes, len(r.byType))}
	for t, o := range r.byType {
		out.ActionSuccess += o.Success
		out.ActionRefusal += o.Refusal
		out.ActionFailure += o.Failure
		out.ByActionType[string(t)] = *o
	}
	out.ActionTotal = out.ActionSuccess + out.ActionRefusal + out.ActionFailure
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
