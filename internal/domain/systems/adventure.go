package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// Adventure sends the hero out on routes and trains between runs.
type Adventure struct {
	data    *game.GameData
	starter ProcessStarter
}

func NewAdventure(data *game.GameData, starter ProcessStarter) *Adventure {
	return &Adventure{data: data, starter: starter}
}

func (s *Adventure) Name() string { return "adventure" }

func (s *Adventure) Actions() []game.ActionType {
	return []game.ActionType{game.ActionAdventure, game.ActionTrain}
}

func (s *Adventure) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	switch a.Type {
	case game.ActionAdventure:
		return s.adventure(a, state)
	case game.ActionTrain:
		return s.train(a, state)
	}
	return game.ActionResult{}, fmt.Errorf("adventure cannot handle %q", a.Type)
}

func (s *Adventure) adventure(a game.Action, state *game.GameState) (game.ActionResult, error) {
	rec, ok := s.data.Item(a.Target)
	if !ok || rec.Category != game.CategoryRoute {
		return game.ActionResult{}, unknownItem(a.Target)
	}
	variant := a.Variant
	if variant == "" {
		variant = game.VariantShort
	}
	if !game.IsRouteVariant(variant) {
		return game.ActionResult{}, refuse("unknown route length %q", variant)
	}
	if state.Adventure.ActiveRoute != "" {
		return game.ActionResult{}, refuse("hero is already on %s", state.Adventure.ActiveRoute)
	}
	if !state.PrerequisitesMet(rec) {
		return game.ActionResult{}, refuse("%s requires hero level %d", rec.ID, rec.Level)
	}
	if err := needEnergy(state, game.AdventureEnergyCost); err != nil {
		return game.ActionResult{}, err
	}
	p, ok := s.starter.Start(game.ProcessAdventure, game.StartRequest{Route: rec.ID, Variant: variant}, state)
	if !ok {
		return game.ActionResult{}, refuse("cannot depart for %s", rec.ID)
	}
	state.Resources.Energy.Spend(game.AdventureEnergyCost)
	ev := newEvent(state, "adventure_started", fmt.Sprintf("set out on %s (%s)", rec.Name, variant), map[string]any{
		"route":      rec.ID,
		"variant":    variant,
		"process_id": p.ID,
		"duration":   p.Duration,
	})
	ch := changes{}.energy(state)
	ch["adventure.active_route"] = rec.ID
	ch["adventure.variant"] = variant
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}

func (s *Adventure) train(a game.Action, state *game.GameState) (game.ActionResult, error) {
	minutes := a.Duration
	if minutes <= 0 {
		minutes = 30
	}
	if state.Adventure.ActiveRoute != "" {
		return game.ActionResult{}, refuse("hero is away on %s", state.Adventure.ActiveRoute)
	}
	energy := float64(minutes) * game.TrainEnergyPerMinute
	if err := needEnergy(state, energy); err != nil {
		return game.ActionResult{}, err
	}
	state.Resources.Energy.Spend(energy)
	xp := minutes * game.TrainXPPerMinute
	levels := state.AddExperience(xp)
	ev := newEvent(state, "hero_trained", fmt.Sprintf("trained for %d minutes", minutes), map[string]any{
		"minutes":       minutes,
		"xp":            xp,
		"levels_gained": levels,
		"hero_level":    state.Progression.HeroLevel,
	})
	ch := changes{}.energy(state)
	ch["progression.hero_level"] = state.Progression.HeroLevel
	ch["progression.experience"] = state.Progression.Experience
	return game.Succeeded([]game.DomainEvent{ev}, ch), nil
}
