package router

import (
	"errors"
	"fmt"
	"log/slog"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
	"timeherosim/internal/domain/systems"
)

// Router dispatches actions to the system that owns them. The table is built
// once in New and read-only afterwards.
type Router struct {
	table   map[game.ActionType]systems.System
	order   []systems.System
	metrics ports.ActionMetrics
	log     *slog.Logger
}

func New(logger *slog.Logger, metrics ports.ActionMetrics, systemList ...systems.System) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		table:   map[game.ActionType]systems.System{},
		metrics: metrics,
		log:     logger,
	}
	for _, sys := range systemList {
		for _, a := range sys.Actions() {
			if isInline(a) {
				return nil, fmt.Errorf("action %s is handled by the router", a)
			}
			if prev, ok := r.table[a]; ok {
				return nil, fmt.Errorf("action %s registered by both %s and %s", a, prev.Name(), sys.Name())
			}
			r.table[a] = sys
		}
		r.order = append(r.order, sys)
	}
	return r, nil
}

func isInline(t game.ActionType) bool {
	return t == game.ActionMove || t == game.ActionWait
}

// Route never panics; every failure comes back as a failed result.
func (r *Router) Route(a game.Action, state *game.GameState) (result game.ActionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("domain system panicked", "action", a.Type, "panic", rec)
			result = game.Failed(fmt.Sprint(rec))
			r.record(a.Type, result, nil)
		}
	}()

	if state == nil {
		result = game.Failed("no game state")
		r.record(a.Type, result, nil)
		return result
	}

	var err error
	switch a.Type {
	case game.ActionMove:
		result = r.move(a, state)
	case game.ActionWait:
		result = r.wait(a, state)
	default:
		sys, ok := r.table[a.Type]
		if !ok {
			result = game.Failed("no system handles action type: " + string(a.Type))
			break
		}
		result, err = sys.Execute(a, state)
		if err != nil {
			if !isRefusal(err) {
				r.log.Warn("domain system failed", "system", sys.Name(), "action", a.Type, "err", err)
			}
			result = game.Failed(err.Error())
		} else if !result.Success {
			result = game.Failed(result.Error)
		}
	}
	r.record(a.Type, result, err)
	return result
}

func isRefusal(err error) bool {
	return errors.Is(err, game.ErrPreconditionFailed) ||
		errors.Is(err, game.ErrInsufficientResources) ||
		errors.Is(err, game.ErrUnknownItem)
}

func (r *Router) record(t game.ActionType, result game.ActionResult, err error) {
	if r.metrics == nil {
		return
	}
	switch {
	case result.Success:
		r.metrics.RecordSuccess(t)
	case err != nil && isRefusal(err):
		r.metrics.RecordRefusal(t)
	default:
		r.metrics.RecordFailure(t)
	}
}

func (r *Router) move(a game.Action, state *game.GameState) game.ActionResult {
	if a.Target == "" {
		return game.Failed("move action requires a target screen")
	}
	loc := &state.Location
	from := loc.CurrentScreen
	loc.PreviousScreen = from
	loc.CurrentScreen = a.Target
	loc.TimeOnScreen = 0
	loc.ScreenHistory = append(loc.ScreenHistory, a.Target)
	if n := len(loc.ScreenHistory); n > game.MaxScreenHistory {
		loc.ScreenHistory = append([]string(nil), loc.ScreenHistory[n-game.MaxScreenHistory:]...)
	}

	ev := game.DomainEvent{
		Type:        "movement",
		Description: fmt.Sprintf("moved from %s to %s", from, a.Target),
		Data: map[string]any{
			"from":   from,
			"to":     a.Target,
			"reason": a.Description,
		},
		OccurredAt: state.Time.TotalMinutes,
	}
	return game.Succeeded([]game.DomainEvent{ev}, map[string]any{
		"location.current_screen":  loc.CurrentScreen,
		"location.previous_screen": loc.PreviousScreen,
		"location.time_on_screen":  0,
	})
}

func (r *Router) wait(a game.Action, state *game.GameState) game.ActionResult {
	ev := game.DomainEvent{
		Type:        "wait",
		Description: fmt.Sprintf("waited %d minutes", a.Duration),
		Data:        map[string]any{"duration": a.Duration},
		OccurredAt:  state.Time.TotalMinutes,
	}
	return game.Succeeded([]game.DomainEvent{ev}, nil)
}

// SystemFor names the owner of an action type. Inline actions belong to
// the router itself.
func (r *Router) SystemFor(t game.ActionType) (string, bool) {
	if isInline(t) {
		return "router", true
	}
	sys, ok := r.table[t]
	if !ok {
		return "", false
	}
	return sys.Name(), true
}

func (r *Router) ActionsFor(name string) []game.ActionType {
	for _, sys := range r.order {
		if sys.Name() == name {
			return append([]game.ActionType(nil), sys.Actions()...)
		}
	}
	if name == "router" {
		return []game.ActionType{game.ActionMove, game.ActionWait}
	}
	return nil
}

func (r *Router) Systems() []string {
	out := make([]string, 0, len(r.order))
	for _, sys := range r.order {
		out = append(out, sys.Name())
	}
	return out
}

func (r *Router) CanRoute(t game.ActionType) bool {
	if isInline(t) {
		return true
	}
	_, ok := r.table[t]
	return ok
}

// System returns the registered system by name.
func (r *Router) System(name string) (systems.System, bool) {
	for _, sys := range r.order {
		if sys.Name() == name {
			return sys, true
		}
	}
	return nil, false
}
