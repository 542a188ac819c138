package systems

import (
	"fmt"
	"sort"

	"timeherosim/internal/domain/game"
)

// Farm handles planting, harvesting, watering, pumping and land cleanup.
type Farm struct {
	data    *game.GameData
	starter ProcessStarter
}

func NewFarm(data *game.GameData, starter ProcessStarter) *Farm {
	return &Farm{data: data, starter: starter}
}

func (f *Farm) Name() string { return "farm" }

func (f *Farm) Actions() []game.ActionType {
	return []game.ActionType{game.ActionPlant, game.ActionHarvest, game.ActionWater, game.ActionPump, game.ActionCleanup}
}

func (f *Farm) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	switch a.Type {
	case game.ActionPlant:
		return f.plant(a, state)
	case game.ActionHarvest:
		return f.harvest(a, state)
	case game.ActionWater:
		return f.water(a, state)
	case game.ActionPump:
		return f.pump(a, state)
	case game.ActionCleanup:
		return f.cleanup(a, state)
	}
	return game.ActionResult{}, fmt.Errorf("farm cannot handle %q", a.Type)
}

// plantablePlots lists unlocked plots that are empty or hold a withered crop.
func plantablePlots(state *game.GameState) []int {
	out := []int{}
	for _, p := range state.Farm.Plots {
		if !p.Unlocked || p.ProcessID != "" || p.Ready {
			continue
		}
		if p.Crop == "" || p.Withered {
			out = append(out, p.Index)
		}
	}
	return out
}

func (f *Farm) plant(a game.Action, state *game.GameState) (game.ActionResult, error) {
	crop := a.Target
	if crop == "" {
		crop, _ = state.Resources.Seeds.Dominant()
	}
	if crop == "" {
		return game.ActionResult{}, short("seeds", 1, 0)
	}
	rec, ok := f.data.Item(crop)
	if !ok || rec.Category != game.CategoryCrop {
		return game.ActionResult{}, unknownItem(crop)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s is locked", crop)
	}
	seeds := state.Resources.Seeds.Count(crop)
	if seeds == 0 {
		return game.ActionResult{}, short(crop+" seeds", 1, 0)
	}
	plots := plantablePlots(state)
	if len(plots) == 0 {
		return game.ActionResult{}, refuse("no free plot to plant %s", crop)
	}
	if err := needEnergy(state, game.PlantEnergyCost); err != nil {
		return game.ActionResult{}, err
	}

	n := min(len(plots), seeds, quantity(a, len(plots)), int(state.Resources.Energy.Current/game.PlantEnergyCost))
	ch := changes{}
	events := []game.DomainEvent{}
	planted := []int{}
	for _, idx := range plots[:n] {
		plot := state.Plot(idx)
		was := *plot
		if plot.Withered {
			plot.Withered = false
			plot.Crop = ""
		}
		p, ok := f.starter.Start(game.ProcessCropGrowth, game.StartRequest{Item: crop, PlotIndex: idx}, state)
		if !ok {
			*plot = was
			continue
		}
		state.Resources.Seeds.Take(crop, 1)
		state.Resources.Energy.Spend(game.PlantEnergyCost)
		planted = append(planted, idx)
		ch.plot(state, idx)
		events = append(events, newEvent(state, "crop_planted", fmt.Sprintf("planted %s on plot %d", crop, idx), map[string]any{
			"plot":       idx,
			"crop":       crop,
			"process_id": p.ID,
			"duration":   p.Duration,
		}))
	}
	if len(planted) == 0 {
		return game.ActionResult{}, refuse("no plot accepted %s", crop)
	}
	ch.seed(state, crop).energy(state)
	return game.Succeeded(events, ch), nil
}

func (f *Farm) harvest(a game.Action, state *game.GameState) (game.ActionResult, error) {
	ready := game.ReadyPlots(state)
	withered := []int{}
	for _, p := range state.Farm.Plots {
		if p.Withered {
			withered = append(withered, p.Index)
		}
	}
	if len(ready) == 0 && len(withered) == 0 {
		return game.ActionResult{}, refuse("no crops ready to harvest")
	}
	if len(ready) > 0 {
		if err := needEnergy(state, game.HarvestEnergyCost); err != nil {
			return game.ActionResult{}, err
		}
	}

	ch := changes{}
	events := []game.DomainEvent{}
	n := min(len(ready), quantity(a, len(ready)), int(state.Resources.Energy.Current/game.HarvestEnergyCost))
	for _, idx := range ready[:n] {
		state.Resources.Energy.Spend(game.HarvestEnergyCost)
		crop, yield, ok := game.HarvestPlot(state, idx, f.data)
		if !ok {
			continue
		}
		ch.plot(state, idx).material(state, crop)
		events = append(events, newEvent(state, "crop_harvested", fmt.Sprintf("harvested %d %s from plot %d", yield, crop, idx), map[string]any{
			"plot":  idx,
			"crop":  crop,
			"yield": yield,
		}))
	}
	for _, idx := range withered {
		plot := state.Plot(idx)
		crop := plot.Crop
		plot.Crop = ""
		plot.Withered = false
		ch.plot(state, idx)
		events = append(events, newEvent(state, "plot_cleared", fmt.Sprintf("cleared withered %s from plot %d", crop, idx), map[string]any{
			"plot": idx,
			"crop": crop,
		}))
	}
	ch.energy(state)
	return game.Succeeded(events, ch), nil
}

func (f *Farm) water(a game.Action, state *game.GameState) (game.ActionResult, error) {
	targets := []game.Plot{}
	for _, p := range state.Farm.Plots {
		if p.Unlocked && !p.Withered && !p.Ready && p.WaterLevel < game.PlotWaterMax {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return game.ActionResult{}, refuse("no plot needs water")
	}
	// Growing crops first, then the driest plots.
	sort.SliceStable(targets, func(i, j int) bool {
		gi, gj := targets[i].ProcessID != "", targets[j].ProcessID != ""
		if gi != gj {
			return gi
		}
		return targets[i].WaterLevel < targets[j].WaterLevel
	})
	if err := needEnergy(state, game.WaterEnergyCost); err != nil {
		return game.ActionResult{}, err
	}
	if !state.Resources.Water.Has(game.WaterPerPlot) {
		return game.ActionResult{}, short("water", game.WaterPerPlot, state.Resources.Water.Current)
	}

	n := min(len(targets), quantity(a, len(targets)), int(state.Resources.Water.Current/game.WaterPerPlot))
	state.Resources.Energy.Spend(game.WaterEnergyCost)
	ch := changes{}
	watered := make([]int, 0, n)
	for _, t := range targets[:n] {
		state.Resources.Water.Spend(game.WaterPerPlot)
		state.Plot(t.Index).WaterLevel = game.PlotWaterMax
		watered = append(watered, t.Index)
		ch.plot(state, t.Index)
	}
	ch.water(state).energy(state)
	ev := newEvent(state, "plots_watered", fmt.Sprintf("watered %d plots", len(watered)), map[string]any{
		"plots":      watered,
		"water_used": float64(len(watered)) * game.WaterPerPlot,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

func (f *Farm) pump(a game.Action, state *game.GameState) (game.ActionResult, error) {
	if state.Resources.Water.Headroom() <= 0 {
		return game.ActionResult{}, refuse("water tank is full")
	}
	if err := needEnergy(state, game.PumpEnergyCost); err != nil {
		return game.ActionResult{}, err
	}
	n := min(quantity(a, 1), int(state.Resources.Energy.Current/game.PumpEnergyCost))
	pumped := 0.0
	for i := 0; i < n && state.Resources.Water.Headroom() > 0; i++ {
		state.Resources.Energy.Spend(game.PumpEnergyCost)
		pumped += state.Resources.Water.Add(game.PumpWaterAmount)
	}
	ev := newEvent(state, "water_pumped", fmt.Sprintf("pumped %.0f water", pumped), map[string]any{
		"amount": pumped,
	})
	return game.Succeeded([]game.DomainEvent{ev}, changes{}.water(state).energy(state)), nil
}

func (f *Farm) cleanup(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := f.data.Item(a.Target)
	if !ok || rec.Category != game.CategoryCleanup {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	if state.Progression.CompletedMilestones.Has(rec.ID) {
		return game.ActionResult{}, refuse("%s already done", rec.ID)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s is locked", rec.ID)
	}
	if err := needEnergy(state, float64(rec.EnergyCost)); err != nil {
		return game.ActionResult{}, err
	}

	state.Resources.Energy.Spend(float64(rec.EnergyCost))
	ch := changes{}.energy(state)
	opened := []int{}
	want := int(rec.Attr("plots"))
	for i := range state.Farm.Plots {
		if len(opened) >= want {
			break
		}
		if !state.Farm.Plots[i].Unlocked {
			state.Farm.Plots[i].Unlocked = true
			opened = append(opened, i)
			ch.plot(state, i)
		}
	}
	loot := map[string]int{}
	for _, id := range []string{"stone", "wood"} {
		if n := int(rec.Attr(id)); n > 0 {
			state.Resources.Materials.Add(id, n)
			loot[id] = n
			ch.material(state, id)
		}
	}
	state.Progression.CompletedMilestones.Add(rec.ID)
	ev := newEvent(state, "land_cleared", rec.Name+" done", map[string]any{
		"cleanup": rec.ID,
		"plots":   opened,
		"loot":    loot,
	})
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}
