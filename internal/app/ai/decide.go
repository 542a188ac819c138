package ai

import (
	"math"

	"timeherosim/internal/domain/game"
)

// ProcessView exposes which processes are running.
type ProcessView interface {
	CountKind(kind game.ProcessKind) int
	HasItemInFlight(kind game.ProcessKind, item string) bool
}

// Decider turns the live state into the next actions. It keeps no state
// between calls.
type Decider struct {
	data       *game.GameData
	thresholds Thresholds
	profile    Profile
}

func NewDecider(data *game.GameData, persona string, th Thresholds) *Decider {
	if th.WaterPerPlot <= 0 {
		th.WaterPerPlot = game.WaterPerPlot
	}
	return &Decider{data: data, thresholds: th, profile: ProfileFor(persona)}
}

func (d *Decider) Profile() Profile { return d.profile }

func (d *Decider) Bottlenecks(state *game.GameState) []Bottleneck {
	return BottleneckPriorities(state, d.data, d.thresholds)
}

// plan accumulates actions against a scratch budget so one tick does not
// queue actions that the earlier ones make unaffordable.
type plan struct {
	actions []game.Action
	screen  string
	energy  float64
	gold    float64
	limit   int
}

func (p *plan) add(screen string, a game.Action, energy, gold float64) bool {
	need := 1
	if screen != p.screen {
		need = 2
	}
	if len(p.actions)+need > p.limit || p.energy < energy || p.gold < gold {
		return false
	}
	if screen != p.screen {
		p.actions = append(p.actions, game.Action{Type: game.ActionMove, Target: screen, Description: string(a.Type)})
		p.screen = screen
	}
	p.actions = append(p.actions, a)
	p.energy -= energy
	p.gold -= gold
	return true
}

// Decide returns the actions for this tick, always at least one.
func (d *Decider) Decide(state *game.GameState, procs ProcessView) []game.Action {
	wait := []game.Action{{Type: game.ActionWait, Duration: game.DefaultTickMinutes}}
	if state == nil || !d.profile.activeAt(state.Time.Hour) {
		return wait
	}
	p := &plan{
		screen: state.Location.CurrentScreen,
		energy: state.Resources.Energy.Current,
		gold:   state.Resources.Gold.Current,
		limit:  max(d.profile.MaxActions, 1),
	}

	d.tendFarm(state, p)
	for _, b := range d.ordered(state) {
		d.address(b, state, p)
	}
	d.plantAndWater(state, p)
	d.expand(state, p)
	d.helpers(state, p)
	d.forge(state, procs, p)
	d.venture(state, procs, p)

	if len(p.actions) == 0 {
		return wait
	}
	return p.actions
}

// ordered moves the persona's focus to the front when it is present.
func (d *Decider) ordered(state *game.GameState) []Bottleneck {
	list := d.Bottlenecks(state)
	for i, b := range list {
		if b.Type == d.profile.Focus && i > 0 {
			out := append([]Bottleneck{b}, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}

func (d *Decider) reserve(p *plan) float64 {
	return p.energy - d.profile.EnergyReserve
}

func (d *Decider) affordable(cost float64, p *plan) bool {
	return cost*(1+d.profile.GoldReserve) <= p.gold
}

func (d *Decider) tendFarm(state *game.GameState, p *plan) {
	ready := len(game.ReadyPlots(state))
	withered := false
	for _, plot := range state.Farm.Plots {
		withered = withered || plot.Withered
	}
	if ready > 0 || withered {
		p.add(game.ScreenFarm, game.Action{Type: game.ActionHarvest}, float64(min(ready, 1))*game.HarvestEnergyCost, 0)
	}
	for _, id := range state.Resources.Materials.Keys() {
		if rec, ok := d.data.Item(id); ok && rec.Category == game.CategoryCrop {
			p.add(game.ScreenTown, game.Action{Type: game.ActionSellMaterial}, 0, 0)
			return
		}
	}
}

func (d *Decider) address(b Bottleneck, state *game.GameState, p *plan) {
	switch b.Type {
	case BottleneckWater:
		missing := math.Min(state.Resources.Water.Headroom(), b.Demand-b.Available)
		strokes := int(math.Ceil(missing / game.PumpWaterAmount))
		strokes = min(strokes, int(d.reserve(p)/game.PumpEnergyCost))
		if strokes > 0 {
			p.add(game.ScreenFarm, game.Action{Type: game.ActionPump, Quantity: strokes}, float64(strokes)*game.PumpEnergyCost, 0)
		}
	case BottleneckSeeds:
		crop, ok := d.bestCrop(state)
		if !ok {
			return
		}
		want := int(math.Ceil(b.Demand - b.Available))
		rec, _ := d.data.Item(crop)
		if rec.GoldCost > 0 {
			want = min(want, int(p.gold/(float64(rec.GoldCost)*(1+d.profile.GoldReserve))))
		}
		if want > 0 {
			p.add(game.ScreenTown, game.Action{Type: game.ActionPurchase, Target: crop, Quantity: want}, 0, float64(want*rec.GoldCost))
			return
		}
		if d.reserve(p) >= 3*game.CatchSeedsEnergyPer10 {
			p.add(game.ScreenTower, game.Action{Type: game.ActionCatchSeeds, Target: "carrot", Duration: 30}, 3*game.CatchSeedsEnergyPer10, 0)
		}
	}
}

// bestCrop picks the most valuable unlocked crop per growth minute.
func (d *Decider) bestCrop(state *game.GameState) (string, bool) {
	best, score := "", -1.0
	for _, rec := range d.data.ByCategory(game.CategoryCrop) {
		if !state.PrerequisitesMet(rec) || rec.Duration <= 0 {
			continue
		}
		s := float64(rec.Yield*rec.Value-rec.GoldCost) / float64(rec.Duration)
		if s > score {
			best, score = rec.ID, s
		}
	}
	return best, best != ""
}

func (d *Decider) plantAndWater(state *game.GameState, p *plan) {
	free := 0
	needWater := false
	for _, plot := range state.Farm.Plots {
		if !plot.Unlocked {
			continue
		}
		if plot.Empty() {
			free++
		}
		if !plot.Ready && !plot.Withered && plot.WaterLevel < game.PlotWaterMax/2 {
			needWater = true
		}
	}
	if free > 0 {
		if crop, n := state.Resources.Seeds.Dominant(); n > 0 {
			plant := min(free, n, int(d.reserve(p)/game.PlantEnergyCost))
			if plant > 0 {
				p.add(game.ScreenFarm, game.Action{Type: game.ActionPlant, Target: crop, Quantity: plant}, float64(plant)*game.PlantEnergyCost, 0)
			}
		}
	}
	if needWater && state.Resources.Water.Has(game.WaterPerPlot) && d.reserve(p) >= game.WaterEnergyCost {
		p.add(game.ScreenFarm, game.Action{Type: game.ActionWater}, game.WaterEnergyCost, 0)
	}
}

func (d *Decider) expand(state *game.GameState, p *plan) {
	for _, cat := range []game.Category{game.CategoryUpgrade, game.CategoryBuilding, game.CategoryTool, game.CategoryArmor} {
		for _, rec := range d.data.ByCategory(cat) {
			if rec.GoldCost <= 0 || state.Progression.UnlockedUpgrades.Has(rec.ID) || state.Owns(rec.ID) {
				continue
			}
			if len(rec.MaterialCosts) > 0 && cat != game.CategoryBuilding {
				continue
			}
			if !state.PrerequisitesMet(rec) || !state.HasMaterials(rec.MaterialCosts) || !d.affordable(float64(rec.GoldCost), p) {
				continue
			}
			typ := game.ActionPurchase
			if cat == game.CategoryBuilding {
				typ = game.ActionBuild
			}
			p.add(game.ScreenTown, game.Action{Type: typ, Target: rec.ID}, 0, float64(rec.GoldCost))
		}
	}
	for _, rec := range d.data.ByCategory(game.CategoryCleanup) {
		if state.Progression.CompletedMilestones.Has(rec.ID) || !state.PrerequisitesMet(rec) {
			continue
		}
		if d.reserve(p) >= float64(rec.EnergyCost) {
			p.add(game.ScreenFarm, game.Action{Type: game.ActionCleanup, Target: rec.ID}, float64(rec.EnergyCost), 0)
		}
	}
}

func (d *Decider) helpers(state *game.GameState, p *plan) {
	for _, rec := range d.data.ByCategory(game.CategoryHelper) {
		if state.HelperIndex(rec.ID) < 0 && state.PrerequisitesMet(rec) && d.reserve(p) >= float64(rec.EnergyCost) {
			p.add(game.ScreenFarm, game.Action{Type: game.ActionRescue, Target: rec.ID}, float64(rec.EnergyCost), 0)
		}
	}
	for _, h := range state.Helpers {
		if h.Role != game.RoleIdle && h.Role != "" {
			continue
		}
		p.add(game.ScreenFarm, game.Action{Type: game.ActionAssignRole, Target: h.ID, Role: d.neededRole(state)}, 0, 0)
	}
}

func (d *Decider) neededRole(state *game.GameState) game.HelperRole {
	taken := map[game.HelperRole]bool{}
	for _, h := range state.Helpers {
		taken[h.Role] = true
	}
	unlocked := state.Progression.UnlockedUpgrades
	switch {
	case !unlocked.Has("auto_pump") && !taken[game.RolePumper]:
		return game.RolePumper
	case !unlocked.Has("auto_harvest") && !taken[game.RoleHarvester]:
		return game.RoleHarvester
	case !taken[game.RoleWaterer]:
		return game.RoleWaterer
	}
	return game.RoleMiner
}

func (d *Decider) forge(state *game.GameState, procs ProcessView, p *plan) {
	if !state.Progression.UnlockedUpgrades.Has("forge") || procs == nil || procs.CountKind(game.ProcessCrafting) >= state.Forge.Slots {
		return
	}
	for _, cat := range []game.Category{game.CategoryWeapon, game.CategoryArmor, game.CategoryTool} {
		for _, rec := range d.data.ByCategory(cat) {
			if !game.Craftable(rec) || state.Owns(rec.ID) || procs.HasItemInFlight(game.ProcessCrafting, rec.ID) || !state.PrerequisitesMet(rec) || !state.HasMaterials(rec.MaterialCosts) {
				continue
			}
			if state.Forge.Heat < rec.Attr("heat") {
				if d.reserve(p) >= game.StokeEnergyCost {
					p.add(game.ScreenForge, game.Action{Type: game.ActionStoke}, game.StokeEnergyCost, 0)
				}
				return
			}
			p.add(game.ScreenForge, game.Action{Type: game.ActionCraft, Target: rec.ID}, 0, 0)
			return
		}
	}
}

func (d *Decider) venture(state *game.GameState, procs ProcessView, p *plan) {
	busy := func(kind game.ProcessKind) bool { return procs != nil && procs.CountKind(kind) > 0 }

	if state.Adventure.ActiveRoute == "" && !busy(game.ProcessAdventure) {
		route, variant, ok := d.pickRoute(state)
		switch {
		case ok && d.reserve(p) >= game.AdventureEnergyCost:
			p.add(game.ScreenAdventure, game.Action{Type: game.ActionAdventure, Target: route, Variant: variant}, game.AdventureEnergyCost, 0)
		case !ok && p.energy >= 0.6*state.Resources.Energy.Max:
			energy := 30 * game.TrainEnergyPerMinute
			p.add(game.ScreenAdventure, game.Action{Type: game.ActionTrain, Duration: 30}, energy, 0)
		}
	}
	if !busy(game.ProcessMining) && d.reserve(p) >= game.MineEnergyCost {
		p.add(game.ScreenMine, game.Action{Type: game.ActionMine}, game.MineEnergyCost, 0)
	}
}

// pickRoute chooses the highest route the hero can surely win, preferring
// the persona's route length and falling back to shorter ones.
func (d *Decider) pickRoute(state *game.GameState) (string, string, bool) {
	power := state.HeroPower(d.data)
	variants := []string{game.VariantLong, game.VariantMedium, game.VariantShort}
	start := 0
	for i, v := range variants {
		if v == d.profile.Variant {
			start = i
		}
	}
	routes := d.data.ByCategory(game.CategoryRoute)
	for i := len(routes) - 1; i >= 0; i-- {
		rec := routes[i]
		if !state.PrerequisitesMet(rec) {
			continue
		}
		for _, v := range variants[start:] {
			if power >= game.MaxEnemyPower(rec, v) {
				return rec.ID, v, true
			}
		}
	}
	return "", "", false
}
