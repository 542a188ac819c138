package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// Town sells seeds, upgrades and gear, raises buildings and buys materials.
type Town struct {
	data *game.GameData
}

func NewTown(data *game.GameData) *Town {
	return &Town{data: data}
}

func (t *Town) Name() string { return "town" }

func (t *Town) Actions() []game.ActionType {
	return []game.ActionType{game.ActionPurchase, game.ActionBuild, game.ActionSellMaterial}
}

func (t *Town) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	switch a.Type {
	case game.ActionPurchase:
		return t.purchase(a, state)
	case game.ActionBuild:
		return t.build(a, state)
	case game.ActionSellMaterial:
		return t.sell(a, state)
	}
	return game.ActionResult{}, fmt.Errorf("town cannot handle %q", a.Type)
}

func (t *Town) purchase(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := t.data.Item(a.Target)
	if !ok {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s is locked", rec.ID)
	}
	switch rec.Category {
	case game.CategoryCrop:
		return t.buySeeds(a, rec, state)
	case game.CategoryUpgrade:
		if state.Progression.UnlockedUpgrades.Has(rec.ID) {
			return game.ActionResult{}, refuse("%s already unlocked", rec.ID)
		}
	case game.CategoryTool, game.CategoryWeapon, game.CategoryArmor:
		if state.Owns(rec.ID) {
			return game.ActionResult{}, refuse("%s already owned", rec.ID)
		}
		if rec.GoldCost <= 0 {
			return game.ActionResult{}, refuse("%s must be crafted", rec.ID)
		}
	default:
		return game.ActionResult{}, refuse("%s is not sold in town", rec.ID)
	}
	cost := float64(rec.GoldCost)
	if err := needGold(state, cost); err != nil {
		return game.ActionResult{}, err
	}

	state.Resources.Gold.Spend(cost)
	ch := changes{}.gold(state)
	if rec.Category == game.CategoryUpgrade {
		state.Progression.UnlockedUpgrades.Add(rec.ID)
		ch["progression.unlocked_upgrades"] = state.Progression.UnlockedUpgrades.Sorted()
		ch["progression.current_phase"] = state.RefreshPhase()
	} else {
		state.Equip(rec)
		ch["inventory."+string(rec.Category)+"."+rec.ID] = true
	}
	ev := newEvent(state, "item_purchased", "bought "+rec.Name, map[string]any{
		"item":     rec.ID,
		"category": string(rec.Category),
		"gold":     cost,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

func (t *Town) buySeeds(a game.Action, rec game.ItemRecord, state *game.GameState) (game.ActionResult, error) {
	n := quantity(a, 1)
	cost := float64(rec.GoldCost * n)
	if err := needGold(state, cost); err != nil {
		return game.ActionResult{}, err
	}
	state.Resources.Gold.Spend(cost)
	state.Resources.Seeds.Add(rec.ID, n)
	ev := newEvent(state, "seeds_purchased", fmt.Sprintf("bought %d %s seeds", n, rec.ID), map[string]any{
		"crop":   rec.ID,
		"amount": n,
		"gold":   cost,
	})
	return game.Succeeded([]game.DomainEvent{ev}, changes{}.gold(state).seed(state, rec.ID)), nil
}

func (t *Town) build(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := t.data.Item(a.Target)
	if !ok || rec.Category != game.CategoryBuilding {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	if state.Progression.UnlockedUpgrades.Has(rec.ID) {
		return game.ActionResult{}, refuse("%s already built", rec.ID)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s is locked", rec.ID)
	}
	cost := float64(rec.GoldCost)
	if err := needGold(state, cost); err != nil {
		return game.ActionResult{}, err
	}
	if err := needMaterials(state, rec.MaterialCosts); err != nil {
		return game.ActionResult{}, err
	}

	state.Resources.Gold.Spend(cost)
	state.ConsumeMaterials(rec.MaterialCosts)
	ch := changes{}.gold(state)
	for id := range rec.MaterialCosts {
		ch.material(state, id)
	}
	if v := rec.Attr("water_capacity"); v > 0 {
		state.Resources.Water.Max += v
		ch["resources.water.max"] = state.Resources.Water.Max
	}
	if v := rec.Attr("energy_capacity"); v > 0 {
		state.Resources.Energy.Max += v
		ch["resources.energy.max"] = state.Resources.Energy.Max
	}
	if v := int(rec.Attr("forge_slots")); v > 0 {
		state.Forge.Slots += v
		ch["forge.slots"] = state.Forge.Slots
	}
	state.Progression.UnlockedUpgrades.Add(rec.ID)
	ch["progression.unlocked_upgrades"] = state.Progression.UnlockedUpgrades.Sorted()
	ch["progression.current_phase"] = state.RefreshPhase()
	ev := newEvent(state, "building_completed", "built "+rec.Name, map[string]any{
		"building":  rec.ID,
		"gold":      cost,
		"materials": rec.MaterialCosts,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

// sell converts materials to gold. Without a target every harvested crop
// is sold.
func (t *Town) sell(a game.Action, state *game.GameState) (game.ActionResult, error) {
	targets := []string{a.Target}
	if a.Target == "" {
		targets = targets[:0]
		for _, id := range state.Resources.Materials.Keys() {
			if rec, ok := t.data.Item(id); ok && rec.Category == game.CategoryCrop {
				targets = append(targets, id)
			}
		}
		if len(targets) == 0 {
			return game.ActionResult{}, refuse("no crops to sell")
		}
	}
	type sale struct {
		id    string
		n     int
		value int
	}
	sales := make([]sale, 0, len(targets))
	for _, id := range targets {
		rec, ok := t.data.Item(id)
		if !ok {
			return game.ActionResult{}, unknownItem(id)
		}
		have := state.Resources.Materials.Count(id)
		n := have
		if a.Target != "" {
			n = quantity(a, have)
		}
		if n <= 0 || have < n {
			return game.ActionResult{}, short(id, float64(max(n, 1)), float64(have))
		}
		sales = append(sales, sale{id: id, n: n, value: rec.Value})
	}

	ch := changes{}
	total := 0.0
	sold := map[string]int{}
	for _, s := range sales {
		state.Resources.Materials.Take(s.id, s.n)
		gold := float64(s.n * s.value)
		state.Resources.Gold.Add(gold)
		total += gold
		sold[s.id] = s.n
		ch.material(state, s.id)
	}
	ch.gold(state)
	ev := newEvent(state, "materials_sold", fmt.Sprintf("sold materials for %.0f gold", total), map[string]any{
		"sold": sold,
		"gold": total,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}
