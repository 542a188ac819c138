package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// Forge crafts gear from materials. Crafting needs heat, which fades over time.
type Forge struct {
	data    *game.GameData
	starter ProcessStarter
}

func NewForge(data *game.GameData, starter ProcessStarter) *Forge {
	return &Forge{data: data, starter: starter}
}

func (f *Forge) Name() string { return "forge" }

func (f *Forge) Actions() []game.ActionType {
	return []game.ActionType{game.ActionCraft, game.ActionStoke}
}

func (f *Forge) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	switch a.Type {
	case game.ActionCraft:
		return f.craft(a, state)
	case game.ActionStoke:
		return f.stoke(state)
	}
	return game.ActionResult{}, fmt.Errorf("forge cannot handle %q", a.Type)
}

func (f *Forge) craft(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := f.data.Item(a.Target)
	if !ok {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	if !game.Craftable(rec) {
		return game.ActionResult{}, refuse("%s cannot be crafted", rec.ID)
	}
	if state.Owns(rec.ID) {
		return game.ActionResult{}, refuse("%s already owned", rec.ID)
	}
	if f.starter.HasItemInFlight(game.ProcessCrafting, rec.ID) {
		return game.ActionResult{}, refuse("%s is already being crafted", rec.ID)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s is locked", rec.ID)
	}
	if err := needMaterials(state, rec.MaterialCosts); err != nil {
		return game.ActionResult{}, err
	}
	if heat := rec.Attr("heat"); state.Forge.Heat < heat {
		return game.ActionResult{}, short("heat", heat, state.Forge.Heat)
	}
	p, ok := f.starter.Start(game.ProcessCrafting, game.StartRequest{Item: rec.ID}, state)
	if !ok {
		return game.ActionResult{}, refuse("no free forge slot")
	}
	state.ConsumeMaterials(rec.MaterialCosts)
	ch := changes{}
	for id := range rec.MaterialCosts {
		ch.material(state, id)
	}
	ev := newEvent(state, "crafting_started", "started crafting "+rec.Name, map[string]any{
		"item":       rec.ID,
		"process_id": p.ID,
		"duration":   p.Duration,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

func (f *Forge) stoke(state *game.GameState) (game.ActionResult, error) {
	if !state.Progression.UnlockedUpgrades.Has("forge") {
		return game.ActionResult{}, refuse("forge is not built")
	}
	if state.Forge.Heat >= game.ForgeHeatMax {
		return game.ActionResult{}, refuse("forge is already at full heat")
	}
	if err := needEnergy(state, game.StokeEnergyCost); err != nil {
		return game.ActionResult{}, err
	}
	state.Resources.Energy.Spend(game.StokeEnergyCost)
	state.Forge.Heat = min(state.Forge.Heat+game.StokeHeat, game.ForgeHeatMax)
	ev := newEvent(state, "forge_stoked", fmt.Sprintf("forge heat now %.0f", state.Forge.Heat), map[string]any{
		"heat": state.Forge.Heat,
	})
	ch := changes{}.energy(state)
	ch["forge.heat"] = state.Forge.Heat
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

// Cool lowers forge heat by the passive decay over minutes.
func (f *Forge) Cool(state *game.GameState, minutes float64) float64 {
	if minutes <= 0 || state.Forge.Heat <= 0 {
		return 0
	}
	before := state.Forge.Heat
	state.Forge.Heat = max(0, before-minutes*game.ForgeHeatDecayPerMinute)
	return before - state.Forge.Heat
}
