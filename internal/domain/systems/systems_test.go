package systems

import (
	"errors"
	"testing"

	"timeherosim/internal/domain/game"
)

func TestAll_ActionOwnershipIsDisjoint(t *testing.T) {
	owners := map[game.ActionType]string{}
	for _, sys := range All(game.DefaultGameData(), &stubStarter{}) {
		for _, a := range sys.Actions() {
			if prev, ok := owners[a]; ok {
				t.Fatalf("%s owned by both %s and %s", a, prev, sys.Name())
			}
			owners[a] = sys.Name()
		}
	}
	for _, a := range game.AllActionTypes() {
		if a == game.ActionMove || a == game.ActionWait {
			continue
		}
		if _, ok := owners[a]; !ok {
			t.Fatalf("no system owns %s", a)
		}
	}
}

func TestTower_CatchSeeds(t *testing.T) {
	tower := NewTower(game.DefaultGameData())
	state := game.NewGameState()

	if _, err := tower.Execute(game.Action{Type: game.ActionCatchSeeds, Target: "radish", Duration: 30}, state); err != nil {
		t.Fatalf("catch seeds: %v", err)
	}
	if got := state.Resources.Seeds.Count("radish"); got != 6 {
		t.Fatalf("radish seeds mismatch: got=%d want=6", got)
	}
	if got := state.Resources.Energy.Current; got != game.DefaultEnergyMax-3 {
		t.Fatalf("energy mismatch: got=%f want=%d", got, game.DefaultEnergyMax-3)
	}
}

func TestTown_PurchaseUpgradeAndSeeds(t *testing.T) {
	town := NewTown(game.DefaultGameData())
	state := game.NewGameState()

	_, err := town.Execute(game.Action{Type: game.ActionPurchase, Target: "auto_pump"}, state)
	var short *game.InsufficientResourceError
	if !errors.As(err, &short) || short.Resource != "gold" {
		t.Fatalf("expected gold shortage, got %v", err)
	}

	state.Resources.Gold.Current = 110
	if _, err := town.Execute(game.Action{Type: game.ActionPurchase, Target: "auto_pump"}, state); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !state.Progression.UnlockedUpgrades.Has("auto_pump") {
		t.Fatalf("expected auto_pump unlocked")
	}
	if _, err := town.Execute(game.Action{Type: game.ActionPurchase, Target: "auto_pump"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected duplicate purchase refusal, got %v", err)
	}
	if _, err := town.Execute(game.Action{Type: game.ActionPurchase, Target: "carrot", Quantity: 5}, state); err != nil {
		t.Fatalf("buy seeds: %v", err)
	}
	if state.Resources.Gold.Current != 0 || state.Resources.Seeds.Count("carrot") != 8 {
		t.Fatalf("seed purchase mismatch: gold=%f seeds=%d", state.Resources.Gold.Current, state.Resources.Seeds.Count("carrot"))
	}
	if _, err := town.Execute(game.Action{Type: game.ActionPurchase, Target: "hammer"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("crafted items are not sold, got %v", err)
	}
}

func TestTown_BuildRaisesCapacity(t *testing.T) {
	town := NewTown(game.DefaultGameData())
	state := game.NewGameState()
	state.Resources.Gold.Current = 100
	state.Resources.Materials.Add("stone", 6)

	res, err := town.Execute(game.Action{Type: game.ActionBuild, Target: "well"}, state)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if state.Resources.Water.Max != game.DefaultWaterMax+50 {
		t.Fatalf("water max mismatch: got=%f", state.Resources.Water.Max)
	}
	if state.Resources.Materials.Count("stone") != 1 || state.Resources.Gold.Current != 40 {
		t.Fatalf("costs not paid: stone=%d gold=%f", state.Resources.Materials.Count("stone"), state.Resources.Gold.Current)
	}
	if res.StateChanges["resources.water.max"] != state.Resources.Water.Max {
		t.Fatalf("expected water max change, got=%v", res.StateChanges)
	}
	if _, err := town.Execute(game.Action{Type: game.ActionBuild, Target: "forge"}, state); !errors.Is(err, game.ErrInsufficientResources) {
		t.Fatalf("expected shortage for forge, got %v", err)
	}
}

func TestTown_SellWithoutTargetSellsCropsOnly(t *testing.T) {
	town := NewTown(game.DefaultGameData())
	state := game.NewGameState()
	state.Resources.Materials = game.Counter{"carrot": 4, "radish": 1, "stone": 9}

	if _, err := town.Execute(game.Action{Type: game.ActionSellMaterial}, state); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if want := float64(game.DefaultStartGold + 4*3 + 4); state.Resources.Gold.Current != want {
		t.Fatalf("gold mismatch: got=%f want=%f", state.Resources.Gold.Current, want)
	}
	if state.Resources.Materials.Count("stone") != 9 || state.Resources.Materials.Count("carrot") != 0 {
		t.Fatalf("materials mismatch: %v", state.Resources.Materials)
	}
	if _, err := town.Execute(game.Action{Type: game.ActionSellMaterial, Target: "stone", Quantity: 10}, state); !errors.Is(err, game.ErrInsufficientResources) {
		t.Fatalf("expected oversell refusal, got %v", err)
	}
}

func TestAdventure_StartAndTrain(t *testing.T) {
	starter := &stubStarter{}
	adv := NewAdventure(game.DefaultGameData(), starter)
	state := game.NewGameState()

	if _, err := adv.Execute(game.Action{Type: game.ActionAdventure, Target: "pine_vale"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected level gate, got %v", err)
	}
	if _, err := adv.Execute(game.Action{Type: game.ActionAdventure, Target: "meadow_path", Variant: "Endless"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected variant refusal, got %v", err)
	}
	res, err := adv.Execute(game.Action{Type: game.ActionAdventure, Target: "meadow_path"}, state)
	if err != nil {
		t.Fatalf("adventure: %v", err)
	}
	if res.StateChanges["adventure.variant"] != game.VariantShort || starter.calls[0].Variant != game.VariantShort {
		t.Fatalf("default variant mismatch: %v", res.StateChanges)
	}
	if _, err := adv.Execute(game.Action{Type: game.ActionTrain, Duration: 10}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("hero away should block training, got %v", err)
	}

	state.Adventure.ActiveRoute = ""
	if _, err := adv.Execute(game.Action{Type: game.ActionTrain, Duration: 50}, state); err != nil {
		t.Fatalf("train: %v", err)
	}
	if state.Progression.HeroLevel != 2 || state.Progression.Experience != 0 {
		t.Fatalf("level mismatch: level=%d xp=%d", state.Progression.HeroLevel, state.Progression.Experience)
	}
}

func TestForge_StokeAndCraft(t *testing.T) {
	starter := &stubStarter{}
	forge := NewForge(game.DefaultGameData(), starter)
	state := game.NewGameState()

	if _, err := forge.Execute(game.Action{Type: game.ActionStoke}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected unbuilt forge refusal, got %v", err)
	}
	state.Progression.UnlockedUpgrades.Add("forge")
	state.Resources.Materials = game.Counter{"copper": 2, "wood": 1}

	if _, err := forge.Execute(game.Action{Type: game.ActionCraft, Target: "hammer"}, state); !errors.Is(err, game.ErrInsufficientResources) {
		t.Fatalf("expected heat shortage, got %v", err)
	}
	if _, err := forge.Execute(game.Action{Type: game.ActionStoke}, state); err != nil {
		t.Fatalf("stoke: %v", err)
	}
	if _, err := forge.Execute(game.Action{Type: game.ActionCraft, Target: "hammer"}, state); err != nil {
		t.Fatalf("craft: %v", err)
	}
	if state.Resources.Materials.Total() != 0 {
		t.Fatalf("materials should be consumed: %v", state.Resources.Materials)
	}

	if cooled := forge.Cool(state, 100); cooled != 10 || state.Forge.Heat != 15 {
		t.Fatalf("cooling mismatch: cooled=%f heat=%f", cooled, state.Forge.Heat)
	}
	forge.Cool(state, 1000)
	if state.Forge.Heat != 0 {
		t.Fatalf("heat must not go negative: got=%f", state.Forge.Heat)
	}
}

func TestForge_SecondCraftOfSameItemIsRefused(t *testing.T) {
	forge := NewForge(game.DefaultGameData(), &stubStarter{})
	state := game.NewGameState()
	state.Progression.UnlockedUpgrades.Add("forge")
	state.Forge.Slots = 2
	state.Forge.Heat = 50
	state.Resources.Materials = game.Counter{"copper": 6}

	if _, err := forge.Execute(game.Action{Type: game.ActionCraft, Target: "copper_sword"}, state); err != nil {
		t.Fatalf("first craft: %v", err)
	}
	if _, err := forge.Execute(game.Action{Type: game.ActionCraft, Target: "copper_sword"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected in-flight refusal, got %v", err)
	}
	if got := state.Resources.Materials["copper"]; got != 3 {
		t.Fatalf("copper mismatch: got=%d want=3", got)
	}
}

func TestMine_RefusedStartKeepsEnergy(t *testing.T) {
	mine := NewMine(&stubStarter{refuse: true})
	state := game.NewGameState()

	if _, err := mine.Execute(game.Action{Type: game.ActionMine}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected refusal, got %v", err)
	}
	if state.Resources.Energy.Current != game.DefaultEnergyMax {
		t.Fatalf("energy should be untouched: got=%f", state.Resources.Energy.Current)
	}
}

func TestHelper_RescueAssignTrainAndWork(t *testing.T) {
	h := NewHelper(game.DefaultGameData())
	state := game.NewGameState()

	if _, err := h.Execute(game.Action{Type: game.ActionRescue, Target: "gnome_pip"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected locked rescue, got %v", err)
	}
	state.Progression.CompletedMilestones.Add(game.MilestoneForRoute("meadow_path"))
	if _, err := h.Execute(game.Action{Type: game.ActionRescue, Target: "gnome_pip"}, state); err != nil {
		t.Fatalf("rescue: %v", err)
	}
	if _, err := h.Execute(game.Action{Type: game.ActionAssignRole, Target: "gnome_pip", Role: "juggler"}, state); !errors.Is(err, game.ErrPreconditionFailed) {
		t.Fatalf("expected bad role refusal, got %v", err)
	}
	if _, err := h.Execute(game.Action{Type: game.ActionAssignRole, Target: "gnome_pip", Role: game.RoleMiner}, state); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := h.Execute(game.Action{Type: game.ActionTrainHelper, Target: "gnome_pip"}, state); !errors.Is(err, game.ErrInsufficientResources) {
		t.Fatalf("expected gold shortage, got %v", err)
	}
	state.Resources.Gold.Current = 30
	if _, err := h.Execute(game.Action{Type: game.ActionTrainHelper, Target: "gnome_pip"}, state); err != nil {
		t.Fatalf("train helper: %v", err)
	}
	if state.Helpers[0].Experience != game.HelperTrainXP || state.Resources.Gold.Current != 5 {
		t.Fatalf("training mismatch: helper=%+v gold=%f", state.Helpers[0], state.Resources.Gold.Current)
	}

	events := h.Work(state, 90)
	if got := state.Resources.Materials.Count("stone"); got != 1 {
		t.Fatalf("miner output mismatch: got=%d want=1", got)
	}
	if state.Helpers[0].Progress != 30 {
		t.Fatalf("carry mismatch: got=%f want=30", state.Helpers[0].Progress)
	}
	if len(events) != 1 {
		t.Fatalf("events mismatch: %+v", events)
	}
}
