package systems

import (
	"fmt"

	"timeherosim/internal/domain/game"
)

type stubStarter struct {
	refuse  bool
	calls   []game.StartRequest
	started []game.Process
}

func (s *stubStarter) HasItemInFlight(kind game.ProcessKind, item string) bool {
	for _, p := range s.started {
		if p.Kind == kind && p.Data.Item == item {
			return true
		}
	}
	return false
}

func (s *stubStarter) Start(kind game.ProcessKind, req game.StartRequest, state *game.GameState) (*game.Process, bool) {
	if s.refuse {
		return nil, false
	}
	s.calls = append(s.calls, req)
	p := &game.Process{
		ID:       fmt.Sprintf("%s-%06d", kind, len(s.calls)),
		Kind:     kind,
		Duration: 60,
		Data:     game.ProcessData{Item: req.Item},
	}
	if kind == game.ProcessCropGrowth {
		plot := state.Plot(req.PlotIndex)
		plot.Crop = req.Item
		plot.ProcessID = p.ID
	}
	if kind == game.ProcessAdventure {
		state.Adventure.ActiveRoute = req.Route
		state.Adventure.Variant = req.Variant
	}
	s.started = append(s.started, *p)
	return p, true
}
