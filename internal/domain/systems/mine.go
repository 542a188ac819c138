package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

// Mine digs one level deeper per process.
type Mine struct {
	starter ProcessStarter
}

func NewMine(starter ProcessStarter) *Mine {
	return &Mine{starter: starter}
}

func (m *Mine) Name() string { return "mine" }

func (m *Mine) Actions() []game.ActionType {
	return []game.ActionType{game.ActionMine}
}

func (m *Mine) Execute(a game.Action, state *game.GameState) (game.ActionResult, error) {
	if a.Type != game.ActionMine {
		return game.ActionResult{}, fmt.Errorf("mine cannot handle %q", a.Type)
	}
	if err := needEnergy(state, game.MineEnergyCost); err != nil {
		return game.ActionResult{}, err
	}
	p, ok := m.starter.Start(game.ProcessMining, game.StartRequest{}, state)
	if !ok {
		return game.ActionResult{}, refuse("already digging")
	}
	state.Resources.Energy.Spend(game.MineEnergyCost)
	ev := newEvent(state, "mining_started", fmt.Sprintf("digging toward depth %d", state.Mine.Depth+1), map[string]any{
		"depth":      state.Mine.Depth,
		"process_id": p.ID,
		"duration":   p.Duration,
	})
	return game.Succeeded([]game.DomainEvent{ev}, changes{}.energy(state)), nil
}
