package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// Helper manages the gnome roster: rescuing, role assignment, training and
// the work each role performs as time passes.
type Helper struct {
	data *game.GameData
}

func NewHelper(data *game.GameData) *Helper {
	return &Helper{data: data}
}

func (h *Helper) Name() string { return "helper" }

func (h *Helper) Actions() []game.ActionType {
	return []game.ActionType{game.ActionAssignRole, game.ActionTrainHelper, game.ActionRescue}
}

func (h *Helper) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	switch a.Type {
	case game.ActionRescue:
		return h.rescue(a, state)
	case game.ActionAssignRole:
		return h.assign(a, state)
	case game.ActionTrainHelper:
		return h.train(a, state)
	}
	return game.ActionResult{}, fmt.Errorf("helper cannot handle %q", a.Type)
}

func (h *Helper) rescue(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := h.data.Item(a.Target)
	if !ok || rec.Category != game.CategoryHelper {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	if state.HelperIndex(rec.ID) >= 0 {
		return game.ActionResult{}, refuse("%s already rescued", rec.ID)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s cannot be reached yet", rec.ID)
	}
	if err := needEnergy(state, float64(rec.EnergyCost)); err != nil {
		return game.ActionResult{}, err
	}
	state.Resources.Energy.Spend(float64(rec.EnergyCost))
	state.Helpers = append(state.Helpers, game.Helper{ID: rec.ID, Name: rec.Name, Role: game.RoleIdle, Level: 1})
	ev := newEvent(state, "helper_rescued", "rescued "+rec.Name, map[string]any{"helper": rec.ID})
	ch := changes{}.energy(state)
	ch["helpers."+rec.ID] = state.Helpers[len(state.Helpers)-1]
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

func (h *Helper) assign(a game.Action, state *game.GameState) (game.ActionResult, error) {
	i := state.HelperIndex(a.Target)
	if i < 0 {
		return game.ActionResult{}, refuse("no helper %q", a.Target)
	}
	if !game.IsHelperRole(a.Role) {
		return game.ActionResult{}, refuse("unknown helper role %q", a.Role)
	}
	prev := state.Helpers[i].Role
	if prev == a.Role {
		return game.ActionResult{}, refuse("%s is already a %s", a.Target, a.Role)
	}
	state.Helpers[i].Role = a.Role
	state.Helpers[i].Progress = 0
	ev := newEvent(state, "helper_assigned", fmt.Sprintf("%s now works as %s", state.Helpers[i].Name, a.Role), map[string]any{
		"helper": a.Target,
		"from":   string(prev),
		"to":     string(a.Role),
	})
	return game.Succeeded([]game.DomainEvent{ev}, changes{"helpers." + a.Target + ".role": string(a.Role)}), nil
}

func (h *Helper) train(a game.Action, state *game.GameState) (game.ActionResult, error) {
	i := state.HelperIndex(a.Target)
	if i < 0 {
		return game.ActionResult{}, refuse("no helper %q", a.Target)
	}
	if err := needGold(state, game.HelperTrainGoldCost); err != nil {
		return game.ActionResult{}, err
	}
	state.Resources.Gold.Spend(game.HelperTrainGoldCost)
	hp := &state.Helpers[i]
	hp.Experience += game.HelperTrainXP
	gained := 0
	for hp.Experience >= hp.Level*game.HelperXPPerLevel {
		hp.Experience -= hp.Level * game.HelperXPPerLevel
		hp.Level++
		gained++
	}
	ev := newEvent(state, "helper_trained", fmt.Sprintf("%s trained to level %d", hp.Name, hp.Level), map[string]any{
		"helper":        hp.ID,
		"level":         hp.Level,
		"levels_gained": gained,
	})
	ch := changes{}.gold(state)
	ch["helpers."+hp.ID+".level"] = hp.Level
	ch["helpers."+hp.ID+".experience"] = hp.Experience
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

// Work applies every helper's role for the elapsed minutes. Waterers and
// harvesters handle up to their level in plots per call; pumpers and miners
// accumulate fractional output in Progress.
func (h *Helper) Work(state *game.GameState, minutes float64) []game.DomainEvent {
	events := []game.DomainEvent{}
	if minutes <= 0 {
		return events
	}
	for i := range state.Helpers {
		hp := &state.Helpers[i]
		switch hp.Role {
		case game.RoleWaterer:
			if n := h.waterPlots(state, hp.Level); n > 0 {
				events = append(events, newEvent(state, "helper_worked", fmt.Sprintf("%s watered %d plots", hp.Name, n), map[string]any{
					"helper": hp.ID, "role": string(hp.Role), "plots": n,
				}))
			}
		case game.RoleHarvester:
			harvested := map[string]int{}
			plots := 0
			for _, idx := range game.ReadyPlots(state) {
				if plots >= hp.Level {
					break
				}
				if crop, yield, ok := game.HarvestPlot(state, idx, h.data); ok {
					harvested[crop] += yield
					plots++
				}
			}
			if len(harvested) > 0 {
				events = append(events, newEvent(state, "helper_worked", hp.Name+" harvested crops", map[string]any{
					"helper": hp.ID, "role": string(hp.Role), "harvested": harvested,
				}))
			}
		case game.RolePumper:
			state.Resources.Water.Add(minutes * game.HelperPumpPerMinute * float64(hp.Level))
		case game.RoleMiner:
			hp.Progress += minutes * float64(hp.Level)
			if found := int(hp.Progress / game.HelperMineMinutes); found > 0 {
				hp.Progress -= float64(found) * game.HelperMineMinutes
				material := game.MiningMaterial(state.Mine.Depth)
				state.Resources.Materials.Add(material, found)
				events = append(events, newEvent(state, "helper_worked", fmt.Sprintf("%s mined %d %s", hp.Name, found, material), map[string]any{
					"helper": hp.ID, "role": string(hp.Role), "material": material, "amount": found,
				}))
			}
		}
	}
	return events
}

func (h *Helper) waterPlots(state *game.GameState, limit int) int {
	n := 0
	for i := range state.Farm.Plots {
		if n >= limit || !state.Resources.Water.Has(game.WaterPerPlot) {
			break
		}
		p := &state.Farm.Plots[i]
		if p.ProcessID == "" || p.WaterLevel > game.PlotWaterMax/2 {
			continue
		}
		state.Resources.Water.Spend(game.WaterPerPlot)
		p.WaterLevel = game.PlotWaterMax
		n++
	}
	return n
}
