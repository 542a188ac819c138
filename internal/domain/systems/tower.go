package systems

import (
	"fmt"
	"math"

	"timeherosim/internal/domain/game"
)

// Tower catches seeds carried by the wind.
type Tower struct {
	data *game.GameData
}

func NewTower(data *game.GameData) *Tower {
	return &Tower{data: data}
}

func (t *Tower) Name() string { return "tower" }

func (t *Tower) Actions() []game.ActionType {
	return []game.ActionType{game.ActionCatchSeeds}
}

func (t *Tower) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	if a.Type != game.ActionCatchSeeds {
		return game.ActionResult{}, fmt.Errorf("tower cannot handle %q", a.Type)
	}
	crop := a.Target
	if crop == "" {
		crop = "carrot"
	}
	rec, ok := t.data.Item(crop)
	if !ok || rec.Category != game.CategoryCrop {
		return game.ActionResult{}, unknownItem(crop)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s seeds cannot be caught yet", crop)
	}
	minutes := a.Duration
	if minutes <= 0 {
		minutes = game.DefaultTickMinutes
	}
	energy := math.Ceil(float64(minutes)/10) * game.CatchSeedsEnergyPer10
	if err := needEnergy(state, energy); err != nil {
		return game.ActionResult{}, err
	}
	caught := int(float64(minutes) * game.CatchSeedsPerMinute)
	if caught < 1 {
		caught = 1
	}

	state.Resources.Energy.Spend(energy)
	state.Resources.Seeds.Add(crop, caught)
	ev := newEvent(state, "seeds_caught", fmt.Sprintf("caught %d %s seeds", caught, crop), map[string]any{
		"crop":    crop,
		"amount":  caught,
		"minutes": minutes,
	})
	return game.Succeeded([]game.DomainEvent{ev}, changes{}.seed(state, crop).energy(state)), nil
}
