package ai

const (
	PersonaSpeedrunner    = "speedrunner"
	PersonaCasual         = "casual"
	PersonaWeekendWarrior = "weekend_warrior"
)

const (
	StrategyAggressiveExpansion = "aggressive_expansion"
	StrategyBalanced            = "balanced"
	StrategyBurstPlay           = "burst_play"
)

// PersonaStrategy maps a persona to its behavior mode. Unknown personas
// play balanced.
func PersonaStrategy(persona string) string {
	switch persona {
	case PersonaSpeedrunner:
		return StrategyAggressiveExpansion
	case PersonaWeekendWarrior:
		return StrategyBurstPlay
	default:
		return StrategyBalanced
	}
}

// Profile tunes how a strategy spends.
type Profile struct {
	Strategy string
	// Focus is addressed before other bottlenecks of similar severity.
	Focus BottleneckType
	// GoldReserve is the fraction of a price kept back when buying.
	GoldReserve float64
	// EnergyReserve is kept back from optional activities.
	EnergyReserve float64
	MaxActions    int
	// ActiveHours limits play to [from, to) hours; empty plays all day.
	ActiveHours [][2]int
	Variant     string
}

func ProfileFor(persona string) Profile {
	switch PersonaStrategy(persona) {
	case StrategyAggressiveExpansion:
		return Profile{
			Strategy:      StrategyAggressiveExpansion,
			Focus:         BottleneckGold,
			GoldReserve:   0,
			EnergyReserve: 5,
			MaxActions:    8,
			Variant:       "Medium",
		}
	case StrategyBurstPlay:
		return Profile{
			Strategy:      StrategyBurstPlay,
			Focus:         BottleneckSeeds,
			GoldReserve:   0.1,
			EnergyReserve: 10,
			MaxActions:    10,
			ActiveHours:   [][2]int{{9, 12}, {19, 23}},
			Variant:       "Long",
		}
	default:
		return Profile{
			Strategy:      StrategyBalanced,
			Focus:         BottleneckWater,
			GoldReserve:   0.2,
			EnergyReserve: 20,
			MaxActions:    5,
			Variant:       "Short",
		}
	}
}

func (p Profile) activeAt(hour int) bool {
	if len(p.ActiveHours) == 0 {
		return true
	}
	for _, w := range p.ActiveHours {
		if hour >= w[0] && hour < w[1] {
			return true
		}
	}
	return false
}
