package replay

import (
	"context"
	"errors"
	"strings"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/domain/game"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" {
		return Response{}, ErrInvalidRequest
	}
	if req.ToMinute > 0 && req.FromMinute > req.ToMinute {
		return Response{}, ErrInvalidRequest
	}
	events, err := u.Events.ListByRunID(ctx, req.RunID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.FromMinute, req.ToMinute)
	return Response{Events: events, Totals: reconstruct(events)}, nil
}

func filterByTimeWindow(events []game.DomainEvent, from, to int) []game.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]game.DomainEvent, 0, len(events))
	for _, evt := range events {
		if from > 0 && evt.OccurredAt < from {
			continue
		}
		if to > 0 && evt.OccurredAt > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func reconstruct(events []game.DomainEvent) Totals {
	t := Totals{ByType: map[string]int{}}
	for _, evt := range events {
		t.ByType[evt.Type]++
		t.LastMinute = max(t.LastMinute, evt.OccurredAt)
		switch evt.Type {
		case "crop_harvested":
			t.CropsHarvested += int(num(evt.Data["yield"]))
		case "materials_sold":
			t.GoldFromSales += num(evt.Data["gold"])
		case "crop_withered":
			t.Withered++
		case "adventure_completed":
			if won, _ := evt.Data["victory"].(bool); won {
				t.Victories++
				t.GoldFromRoutes += num(evt.Data["gold"])
			} else {
				t.Defeats++
			}
		}
	}
	return t
}

// num reads a payload number whether it was built in memory or decoded
// from JSON.
func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
