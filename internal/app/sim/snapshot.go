package sim

import (
	"errors"
	"fmt"

	"timeherosim/internal/domain/game"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is everything needed to resume a run: the state, the in-flight
// processes and the cached route rolls.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	Persona   string           `json:"persona"`
	Tick      int64            `json:"tick"`
	State     *game.GameState  `json:"state"`
	Processes []game.Process   `json:"processes"`
	Sequence  int              `json:"process_sequence"`
	Rolls     []game.RouteRoll `json:"rolls"`
	Stats     Stats            `json:"stats"`
	// Reason is set when the run had completed.
	Reason string `json:"reason,omitempty"`
}

func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		RunID:     e.cfg.RunID,
		Persona:   e.cfg.Persona,
		Tick:      e.stats.Ticks,
		State:     e.state.Clone(),
		Processes: e.procs.Active(),
		Sequence:  e.procs.Sequence(),
		Rolls:     e.rolls.Export(),
		Stats:     e.stats.clone(),
	}
	if e.done != nil {
		snap.Reason = e.done.Reason
	}
	return snap
}

// Restore replaces the engine's run with snap. The run id and persona of
// the snapshot win over the engine's config.
func (e *Engine) Restore(snap Snapshot) error {
	if snap.State == nil {
		return fmt.Errorf("%w: missing state", ErrInvalidSnapshot)
	}
	for _, p := range snap.Processes {
		if !p.Kind.Valid() {
			return fmt.Errorf("%w: process %s has unknown kind %q", ErrInvalidSnapshot, p.ID, p.Kind)
		}
	}
	e.state = snap.State.Clone()
	e.procs.Restore(snap.Processes, snap.Sequence)
	e.rolls.Restore(snap.Rolls)
	e.stats = snap.Stats.clone()
	if e.stats.ByAction == nil {
		e.stats.ByAction = map[string]int{}
	}
	e.stats.Ticks = snap.Tick
	if snap.RunID != "" {
		e.cfg.RunID = snap.RunID
		e.stats.RunID = snap.RunID
	}
	if snap.Persona != "" && snap.Persona != e.cfg.Persona {
		e.cfg.Persona = snap.Persona
		e.stats.Persona = snap.Persona
		e.decider = newDecider(e.cfg)
	}
	e.stuckFor = 0
	e.shortage = nil
	e.score = progressScore(e.state)
	e.done = nil
	if snap.Reason != "" {
		c := e.completion(snap.Reason)
		e.done = &c
	}
	e.log.Info("simulation restored", "tick", snap.Tick, "processes", len(snap.Processes), "rolls", len(snap.Rolls))
	return nil
}
