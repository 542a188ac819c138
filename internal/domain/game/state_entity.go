package game

import "strings"

// NewGameState returns a fresh state with the default starting resources.
func NewGameState() *GameState {
	s := &GameState{
		Time: TimeState{Day: 1, Speed: 1},
		Resources: Resources{
			Energy:    Pool{Current: DefaultEnergyMax, Max: DefaultEnergyMax, Regen: DefaultEnergyRegen},
			Gold:      Pool{Current: DefaultStartGold},
			Water:     Pool{Current: DefaultWaterMax / 2, Max: DefaultWaterMax},
			Seeds:     Counter{"carrot": 3},
			Materials: Counter{},
		},
		Progression: Progression{
			HeroLevel:           1,
			UnlockedUpgrades:    Set{},
			CompletedMilestones: Set{},
			CurrentPhase:        PhaseEarly,
		},
		Inventory: Inventory{
			Tools:   map[string]ItemInstance{},
			Weapons: map[string]ItemInstance{},
			Armor:   map[string]ItemInstance{},
		},
		Forge:   ForgeState{Slots: DefaultForgeSlots},
		Helpers: []Helper{},
		Location: Location{
			CurrentScreen: DefaultStartScreen,
			ScreenHistory: []string{DefaultStartScreen},
		},
	}
	s.Farm.Plots = make([]Plot, DefaultTotalPlots)
	for i := range s.Farm.Plots {
		s.Farm.Plots[i] = Plot{Index: i, Unlocked: i < DefaultOpenPlots}
	}
	return s
}

// Owns reports whether an equipment item is in the inventory.
func (s *GameState) Owns(id string) bool {
	if _, ok := s.Inventory.Tools[id]; ok {
		return true
	}
	if _, ok := s.Inventory.Weapons[id]; ok {
		return true
	}
	_, ok := s.Inventory.Armor[id]
	return ok
}

// Satisfies reports whether a prerequisite id is met by an unlock,
// milestone, owned item or rescued helper.
func (s *GameState) Satisfies(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return true
	}
	if s.Progression.UnlockedUpgrades.Has(id) || s.Progression.CompletedMilestones.Has(id) {
		return true
	}
	if s.Owns(id) {
		return true
	}
	return s.HelperIndex(id) >= 0
}

func (s *GameState) PrerequisitesMet(rec ItemRecord) bool {
	for _, p := range rec.Prerequisites {
		if !s.Satisfies(p) {
			return false
		}
	}
	if rec.Category == CategoryRoute && s.Progression.HeroLevel < rec.Level {
		return false
	}
	return true
}

func (s *GameState) HelperIndex(id string) int {
	for i, h := range s.Helpers {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *GameState) Plot(index int) *Plot {
	if index < 0 || index >= len(s.Farm.Plots) {
		return nil
	}
	return &s.Farm.Plots[index]
}

func (s *GameState) UnlockedPlotCount() int {
	n := 0
	for _, p := range s.Farm.Plots {
		if p.Unlocked {
			n++
		}
	}
	return n
}

// SpeedMultiplier multiplies the kind's speed attribute across unlocked
// upgrades, buildings and owned equipment.
func (s *GameState) SpeedMultiplier(kind ProcessKind, data *GameData) float64 {
	attr := kind.SpeedAttribute()
	rate := 1.0
	if attr == "" || data == nil {
		return rate
	}
	for _, item := range data.Items {
		v := item.Attr(attr)
		if v <= 0 {
			continue
		}
		if s.Progression.UnlockedUpgrades.Has(item.ID) || s.Owns(item.ID) {
			rate *= v
		}
	}
	return rate
}

// HeroPower sums base power with the power of owned weapons and armor.
func (s *GameState) HeroPower(data *GameData) int {
	power := HeroBasePower + HeroPowerPerLevel*(s.Progression.HeroLevel-1)
	if data == nil {
		return power
	}
	for id := range s.Inventory.Weapons {
		if rec, ok := data.Item(id); ok {
			power += int(rec.Attr("power"))
		}
	}
	for id := range s.Inventory.Armor {
		if rec, ok := data.Item(id); ok {
			power += int(rec.Attr("power"))
		}
	}
	return power
}

// AddExperience grants XP and returns how many levels were gained.
func (s *GameState) AddExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	s.Progression.Experience += xp
	gained := 0
	for s.Progression.Experience >= s.Progression.HeroLevel*XPPerLevel {
		s.Progression.Experience -= s.Progression.HeroLevel * XPPerLevel
		s.Progression.HeroLevel++
		gained++
	}
	return gained
}

// RefreshPhase derives the progression phase from the number of unlocks.
func (s *GameState) RefreshPhase() string {
	n := len(s.Progression.UnlockedUpgrades)
	switch {
	case n >= PhaseLateUpgradeCount:
		s.Progression.CurrentPhase = PhaseLate
	case n >= PhaseMidUpgradeCount:
		s.Progression.CurrentPhase = PhaseMid
	default:
		s.Progression.CurrentPhase = PhaseEarly
	}
	return s.Progression.CurrentPhase
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Resources.Seeds = s.Resources.Seeds.Clone()
	out.Resources.Materials = s.Resources.Materials.Clone()
	out.Progression.UnlockedUpgrades = s.Progression.UnlockedUpgrades.Clone()
	out.Progression.CompletedMilestones = s.Progression.CompletedMilestones.Clone()
	out.Inventory.Tools = cloneInstances(s.Inventory.Tools)
	out.Inventory.Weapons = cloneInstances(s.Inventory.Weapons)
	out.Inventory.Armor = cloneInstances(s.Inventory.Armor)
	out.Farm.Plots = append([]Plot(nil), s.Farm.Plots...)
	out.Helpers = append([]Helper(nil), s.Helpers...)
	out.Location.ScreenHistory = append([]string(nil), s.Location.ScreenHistory...)
	return &out
}

func cloneInstances(in map[string]ItemInstance) map[string]ItemInstance {
	out := make(map[string]ItemInstance, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Equip places a crafted or purchased item in the matching inventory slot.
func (s *GameState) Equip(rec ItemRecord) bool {
	inst := ItemInstance{ID: rec.ID, Durability: 100, Level: 1}
	switch rec.Category {
	case CategoryTool:
		if s.Inventory.Tools == nil {
			s.Inventory.Tools = map[string]ItemInstance{}
		}
		s.Inventory.Tools[rec.ID] = inst
	case CategoryWeapon:
		if s.Inventory.Weapons == nil {
			s.Inventory.Weapons = map[string]ItemInstance{}
		}
		s.Inventory.Weapons[rec.ID] = inst
	case CategoryArmor:
		if s.Inventory.Armor == nil {
			s.Inventory.Armor = map[string]ItemInstance{}
		}
		s.Inventory.Armor[rec.ID] = inst
	default:
		return false
	}
	return true
}
