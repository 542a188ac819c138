package ai

import (
	"sort"

	"timeherosim/internal/domain/game"
)

type BottleneckType string

const (
	BottleneckWater  BottleneckType = "water"
	BottleneckSeeds  BottleneckType = "seeds"
	BottleneckEnergy BottleneckType = "energy"
	BottleneckGold   BottleneckType = "gold"
)

type Bottleneck struct {
	Type      BottleneckType `json:"type"`
	Severity  float64        `json:"severity"`
	Demand    float64        `json:"demand"`
	Available float64        `json:"available"`
}

// Thresholds parameterizes bottleneck detection.
type Thresholds struct {
	// MinSeverity drops shortages below this shortfall ratio.
	MinSeverity  float64
	WaterPerPlot float64
	// TypePriority breaks severity ties, earlier first.
	TypePriority []BottleneckType
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSeverity:  0.1,
		WaterPerPlot: game.WaterPerPlot,
		TypePriority: []BottleneckType{BottleneckWater, BottleneckSeeds, BottleneckEnergy, BottleneckGold},
	}
}

// shortfall returns (demand-available)/demand, or 0 when demand is covered.
func shortfall(demand, available float64) float64 {
	if demand <= 0 || available >= demand {
		return 0
	}
	if available < 0 {
		available = 0
	}
	return (demand - available) / demand
}

// BottleneckPriorities compares resource levels against the demand implied
// by the current farm and returns shortages by severity, most severe first.
func BottleneckPriorities(state *game.GameState, data *game.GameData, th Thresholds) []Bottleneck {
	out := []Bottleneck{}
	if state == nil {
		return out
	}
	plots := float64(state.UnlockedPlotCount())
	add := func(t BottleneckType, demand, available float64) {
		sev := shortfall(demand, available)
		if sev > 0 && sev >= th.MinSeverity {
			out = append(out, Bottleneck{Type: t, Severity: sev, Demand: demand, Available: available})
		}
	}

	add(BottleneckWater, plots*th.WaterPerPlot, state.Resources.Water.Current)
	_, seeds := state.Resources.Seeds.Dominant()
	add(BottleneckSeeds, plots, float64(seeds))
	add(BottleneckEnergy, plots*game.PlantEnergyCost, state.Resources.Energy.Current)
	if cost, ok := cheapestUpgrade(state, data); ok {
		add(BottleneckGold, cost, state.Resources.Gold.Current)
	}

	rank := map[BottleneckType]int{}
	for i, t := range th.TypePriority {
		rank[t] = i + 1
	}
	priority := func(t BottleneckType) int {
		if r, ok := rank[t]; ok {
			return r
		}
		return len(rank) + 1
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return priority(out[i].Type) < priority(out[j].Type)
	})
	return out
}

// cheapestUpgrade is the lowest gold cost among upgrades and buildings the
// player could unlock next.
func cheapestUpgrade(state *game.GameState, data *game.GameData) (float64, bool) {
	if data == nil {
		return 0, false
	}
	best, found := 0.0, false
	for _, cat := range []game.Category{game.CategoryUpgrade, game.CategoryBuilding} {
		for _, rec := range data.ByCategory(cat) {
			if rec.GoldCost <= 0 || state.Progression.UnlockedUpgrades.Has(rec.ID) || !state.PrerequisitesMet(rec) {
				continue
			}
			if c := float64(rec.GoldCost); !found || c < best {
				best, found = c, true
			}
		}
	}
	return best, found
}
