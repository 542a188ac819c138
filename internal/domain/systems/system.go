package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// System owns the state mutation logic for one gameplay area. Execute either
// fully applies an action or returns an error without touching state.
type System interface {
	Name() string
	Actions() []game.ActionType
	Execute(action game.Action, state *game.GameState) (game.ActionResult, error)
}

// ProcessStarter registers timed activities on behalf of a system.
type ProcessStarter interface {
	Start(kind game.ProcessKind, req game.StartRequest, state *game.GameState) (*game.Process, bool)
	HasItemInFlight(kind game.ProcessKind, item string) bool
}

// All builds the standard set of systems sharing one catalog and starter.
func All(data *game.GameData, starter ProcessStarter) []System {
	return []System{
		NewFarm(data, starter),
		NewTower(data),
		NewTown(data),
		NewAdventure(data, starter),
		NewForge(data, starter),
		NewMine(starter),
		NewHelper(data),
	}
}

func refuse(format string, args ...any) error {
	return fmt.Errorf("%w: %s", game.ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

func unknownItem(id string) error {
	return fmt.Errorf("%w: %q", game.ErrUnknownItem, id)
}

func short(resource string, need, have float64) error {
	return &game.InsufficientResourceError{Resource: resource, Need: need, Have: have}
}

func needEnergy(state *game.GameState, amount float64) error {
	if !state.Resources.Energy.Has(amount) {
		return short("energy", amount, state.Resources.Energy.Current)
	}
	return nil
}

func needGold(state *game.GameState, amount float64) error {
	if !state.Resources.Gold.Has(amount) {
		return short("gold", amount, state.Resources.Gold.Current)
	}
	return nil
}

func needMaterials(state *game.GameState, costs map[string]int) error {
	for id, n := range costs {
		if have := state.Resources.Materials.Count(id); have < n {
			return short(id, float64(n), float64(have))
		}
	}
	return nil
}

func newEvent(state *game.GameState, typ, desc string, data map[string]any) game.DomainEvent {
	if data == nil {
		data = map[string]any{}
	}
	return game.DomainEvent{
		Type:        typ,
		Description: desc,
		Data:        data,
		OccurredAt:  state.Time.TotalMinutes,
	}
}

// changes records dotted state paths with their values after mutation.
type changes map[string]any

func (c changes) energy(state *game.GameState) changes {
	c["resources.energy.current"] = state.Resources.Energy.Current
	return c
}

func (c changes) gold(state *game.GameState) changes {
	c["resources.gold.current"] = state.Resources.Gold.Current
	return c
}

func (c changes) water(state *game.GameState) changes {
	c["resources.water.current"] = state.Resources.Water.Current
	return c
}

func (c changes) seed(state *game.GameState, id string) changes {
	c["resources.seeds."+id] = state.Resources.Seeds.Count(id)
	return c
}

func (c changes) material(state *game.GameState, id string) changes {
	c["resources.materials."+id] = state.Resources.Materials.Count(id)
	return c
}

func (c changes) plot(state *game.GameState, index int) changes {
	if p := state.Plot(index); p != nil {
		c[fmt.Sprintf("farm.plots.%d", index)] = *p
	}
	return c
}

func quantity(a game.Action, fallback int) int {
	if a.Quantity > 0 {
		return a.Quantity
	}
	return fallback
}
