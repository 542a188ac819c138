package ai

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"timeherosim/internal/domain/game"
)

type procCount map[game.ProcessKind]int

func (p procCount) CountKind(kind game.ProcessKind) int { return p[kind] }

func (p procCount) HasItemInFlight(game.ProcessKind, string) bool { return false }

type craftView struct {
	procCount
	items map[string]bool
}

func (v craftView) HasItemInFlight(kind game.ProcessKind, item string) bool {
	return kind == game.ProcessCrafting && v.items[item]
}

func stateWithPlots(n int) *game.GameState {
	s := game.NewGameState()
	for i := range s.Farm.Plots {
		s.Farm.Plots[i].Unlocked = i < n
	}
	return s
}

func TestBottleneckPriorities_WaterAndSeedsShortage(t *testing.T) {
	state := stateWithPlots(10)
	state.Resources.Water = game.Pool{Current: 2, Max: 100}
	state.Resources.Seeds = game.Counter{"carrot": 1}

	got := BottleneckPriorities(state, game.DefaultGameData(), DefaultThresholds())
	if len(got) < 2 {
		t.Fatalf("expected water and seeds bottlenecks, got=%+v", got)
	}
	if got[0].Type != BottleneckWater || got[1].Type != BottleneckSeeds {
		t.Fatalf("order mismatch: got=%+v", got)
	}
	wantWater := (10*game.WaterPerPlot - 2.0) / (10 * game.WaterPerPlot)
	if math.Abs(got[0].Severity-wantWater) > 1e-9 {
		t.Fatalf("water severity mismatch: got=%f want=%f", got[0].Severity, wantWater)
	}
	if math.Abs(got[1].Severity-0.9) > 1e-9 {
		t.Fatalf("seeds severity mismatch: got=%f want=0.9", got[1].Severity)
	}
}

func TestBottleneckPriorities_TiesUseTypePriority(t *testing.T) {
	state := stateWithPlots(4)
	state.Resources.Water = game.Pool{Current: 0, Max: 100}
	state.Resources.Seeds = game.Counter{}

	got := BottleneckPriorities(state, nil, DefaultThresholds())
	if got[0].Type != BottleneckWater || got[1].Type != BottleneckSeeds {
		t.Fatalf("default tie order mismatch: %+v", got)
	}

	th := DefaultThresholds()
	th.TypePriority = []BottleneckType{BottleneckSeeds, BottleneckWater}
	got = BottleneckPriorities(state, nil, th)
	if got[0].Type != BottleneckSeeds {
		t.Fatalf("custom tie order mismatch: %+v", got)
	}
}

func TestBottleneckPriorities_MinSeverityFilters(t *testing.T) {
	state := stateWithPlots(3)
	state.Resources.Water = game.Pool{Current: 14, Max: 100}

	th := DefaultThresholds()
	for _, b := range BottleneckPriorities(state, nil, th) {
		if b.Type == BottleneckWater {
			t.Fatalf("shortfall of 1/15 should be filtered: %+v", b)
		}
	}
	th.MinSeverity = 0
	found := false
	for _, b := range BottleneckPriorities(state, nil, th) {
		found = found || b.Type == BottleneckWater
	}
	if !found {
		t.Fatalf("expected water bottleneck with zero threshold")
	}
}

func TestPersonaStrategy(t *testing.T) {
	cases := map[string]string{
		"speedrunner":     StrategyAggressiveExpansion,
		"casual":          StrategyBalanced,
		"weekend_warrior": StrategyBurstPlay,
		"mystery":         StrategyBalanced,
	}
	for persona, want := range cases {
		if got := PersonaStrategy(persona); got != want {
			t.Fatalf("%s: got=%s want=%s", persona, got, want)
		}
	}
}

func TestDecider_FreshStatePlantsWatersAndAdventures(t *testing.T) {
	d := NewDecider(game.DefaultGameData(), PersonaCasual, DefaultThresholds())
	state := game.NewGameState()

	actions := d.Decide(state, procCount{})
	if len(actions) > d.Profile().MaxActions {
		t.Fatalf("too many actions: %d", len(actions))
	}
	if actions[0].Type != game.ActionPlant || actions[0].Target != "carrot" || actions[0].Quantity != 3 {
		t.Fatalf("first action mismatch: %+v", actions[0])
	}
	var sawMove, sawAdventure bool
	for _, a := range actions {
		if a.Type == game.ActionMove && a.Target == game.ScreenAdventure {
			sawMove = true
		}
		if a.Type == game.ActionAdventure {
			sawAdventure = sawMove && a.Target == "meadow_path" && a.Variant == game.VariantShort
		}
	}
	if !sawAdventure {
		t.Fatalf("expected a move then a short meadow run: %+v", actions)
	}

	again := d.Decide(state, procCount{})
	if diff := cmp.Diff(actions, again); diff != "" {
		t.Fatalf("decisions should be stateless (-first +second):\n%s", diff)
	}
}

func TestDecider_BusyProcessesAreNotRestarted(t *testing.T) {
	d := NewDecider(game.DefaultGameData(), PersonaSpeedrunner, DefaultThresholds())
	state := game.NewGameState()
	state.Adventure.ActiveRoute = "meadow_path"

	for _, a := range d.Decide(state, procCount{game.ProcessMining: 1, game.ProcessAdventure: 1}) {
		if a.Type == game.ActionMine || a.Type == game.ActionAdventure {
			t.Fatalf("busy process restarted: %+v", a)
		}
	}
}

func TestDecider_BurstPlayWaitsOutsideWindow(t *testing.T) {
	d := NewDecider(game.DefaultGameData(), PersonaWeekendWarrior, DefaultThresholds())
	state := game.NewGameState()
	state.Time.Advance(3 * game.MinutesPerHour)

	got := d.Decide(state, procCount{})
	if len(got) != 1 || got[0].Type != game.ActionWait {
		t.Fatalf("expected wait outside play window: %+v", got)
	}
	state.Time.Advance(7 * game.MinutesPerHour)
	if got := d.Decide(state, procCount{}); got[0].Type == game.ActionWait {
		t.Fatalf("expected activity at 10:00: %+v", got)
	}
}

func TestDecider_SeedShortageBuysSeeds(t *testing.T) {
	d := NewDecider(game.DefaultGameData(), PersonaWeekendWarrior, DefaultThresholds())
	state := game.NewGameState()
	state.Time.Advance(10 * game.MinutesPerHour)
	state.Resources.Seeds = game.Counter{}
	state.Resources.Gold.Current = 100

	actions := d.Decide(state, procCount{})
	for _, a := range actions {
		if a.Type == game.ActionPurchase && a.Target == "radish" && a.Quantity == 3 {
			return
		}
	}
	t.Fatalf("expected radish seed purchase: %+v", actions)
}

func TestDecider_InFlightCraftIsNotRepeated(t *testing.T) {
	d := NewDecider(game.DefaultGameData(), PersonaSpeedrunner, DefaultThresholds())
	state := game.NewGameState()
	state.Progression.UnlockedUpgrades.Add("forge")
	state.Forge.Slots = 2
	state.Forge.Heat = 50
	state.Resources.Materials = game.Counter{"copper": 6}
	state.Resources.Energy.Current = 0
	state.Resources.Gold.Current = 0

	crafts := func(view ProcessView) int {
		n := 0
		for _, a := range d.Decide(state, view) {
			if a.Type == game.ActionCraft && a.Target == "copper_sword" {
				n++
			}
		}
		return n
	}
	if got := crafts(procCount{}); got != 1 {
		t.Fatalf("idle forge craft mismatch: got=%d want=1", got)
	}
	busy := craftView{procCount: procCount{game.ProcessCrafting: 1}, items: map[string]bool{"copper_sword": true}}
	if got := crafts(busy); got != 0 {
		t.Fatalf("in-flight craft repeated: got=%d want=0", got)
	}
}
