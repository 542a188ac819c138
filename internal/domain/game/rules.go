package game

// HarvestPlot collects a ready crop. It credits the yield as materials and
// the crop's energy value to the energy pool.
func HarvestPlot(s *GameState, index int, data *GameData) (string, int, bool) {
	plot := s.Plot(index)
	if plot == nil || !plot.Ready || plot.Crop == "" {
		return "", 0, false
	}
	crop := plot.Crop
	yield := 1
	if rec, ok := data.Item(crop); ok {
		if rec.Yield > 0 {
			yield = rec.Yield
		}
		s.Resources.Energy.Add(rec.Attr("energy_value") * float64(yield))
	}
	s.Resources.Materials.Add(crop, yield)
	plot.Crop = ""
	plot.Ready = false
	plot.ProcessID = ""
	return crop, yield, true
}

// ReadyPlots lists the indexes of plots holding a ready crop.
func ReadyPlots(s *GameState) []int {
	out := make([]int, 0)
	for _, p := range s.Farm.Plots {
		if p.Ready {
			out = append(out, p.Index)
		}
	}
	return out
}

// MiningMaterial returns the material found at a depth.
func MiningMaterial(depth int) string {
	material := MiningTiers[0].Material
	for _, tier := range MiningTiers {
		if depth >= tier.MinDepth {
			material = tier.Material
		}
	}
	return material
}

// MiningYield is the amount of material one dig at depth produces.
func MiningYield(depth int) int {
	return 1 + depth/2
}

// ResolveCombat decides a route outcome. The hero must match the strongest
// enemy of the roll.
func ResolveCombat(heroPower int, roll RouteRoll) bool {
	strongest := 0
	for _, e := range roll.Enemies {
		if e.Power > strongest {
			strongest = e.Power
		}
	}
	return heroPower >= strongest
}

// MaxEnemyPower is the strongest enemy a roll of rec at variant can hold.
func MaxEnemyPower(rec ItemRecord, variant string) int {
	base := max(int(rec.Attr("enemy_power")), 1)
	return base*3 + VariantPowerBonus[variant]
}

// CraftDuration is the base minutes needed to craft rec.
func CraftDuration(rec ItemRecord) float64 {
	if rec.Duration > 0 {
		return float64(rec.Duration)
	}
	return 30
}

// MineDuration is the base minutes for one dig at depth.
func MineDuration(depth int) float64 {
	return MineBaseMinutes * (1 + float64(depth)*MineDepthFactor)
}

// RouteDuration is the base minutes for a route at a length variant.
func RouteDuration(rec ItemRecord, variant string) float64 {
	mult, ok := VariantMultiplier[variant]
	if !ok {
		mult = 1
	}
	d := float64(rec.Duration)
	if d <= 0 {
		d = 30
	}
	return d * mult
}

// Craftable reports whether rec is made at the forge.
func Craftable(rec ItemRecord) bool {
	switch rec.Category {
	case CategoryTool, CategoryWeapon, CategoryArmor:
		return len(rec.MaterialCosts) > 0
	}
	return false
}

// HasMaterials reports whether every material cost is covered.
func (s *GameState) HasMaterials(costs map[string]int) bool {
	for id, n := range costs {
		if s.Resources.Materials.Count(id) < n {
			return false
		}
	}
	return true
}

// ConsumeMaterials removes costs after HasMaterials was checked.
func (s *GameState) ConsumeMaterials(costs map[string]int) {
	for id, n := range costs {
		s.Resources.Materials.Drain(id, n)
	}
}
