package game

var defaultItems = []ItemRecord{
	{ID: "carrot", Name: "Carrot", Category: CategoryCrop, GoldCost: 2, Duration: 60, Yield: 2, Value: 3, Attributes: map[string]float64{"energy_value": 1}},
	{ID: "radish", Name: "Radish", Category: CategoryCrop, GoldCost: 3, Duration: 90, Yield: 3, Value: 4, Attributes: map[string]float64{"energy_value": 1}},
	{ID: "potato", Name: "Potato", Category: CategoryCrop, GoldCost: 5, Duration: 180, Yield: 4, Value: 6, Prerequisites: []string{"clear_rocks"}, Attributes: map[string]float64{"energy_value": 2}},
	{ID: "pumpkin", Name: "Pumpkin", Category: CategoryCrop, GoldCost: 12, Duration: 360, Yield: 6, Value: 12, Prerequisites: []string{"well"}, Attributes: map[string]float64{"energy_value": 4}},

	{ID: "stone", Name: "Stone", Category: CategoryMaterial, Value: 1},
	{ID: "wood", Name: "Wood", Category: CategoryMaterial, Value: 1},
	{ID: "copper", Name: "Copper", Category: CategoryMaterial, Value: 4},
	{ID: "iron", Name: "Iron", Category: CategoryMaterial, Value: 8},
	{ID: "silver", Name: "Silver", Category: CategoryMaterial, Value: 15},

	{ID: "clear_rocks", Name: "Clear Rocks", Category: CategoryCleanup, EnergyCost: 10, Attributes: map[string]float64{"plots": 2, "stone": 3}},
	{ID: "clear_stumps", Name: "Clear Stumps", Category: CategoryCleanup, EnergyCost: 20, Prerequisites: []string{"clear_rocks"}, Attributes: map[string]float64{"plots": 3, "wood": 4}},
	{ID: "clear_boulders", Name: "Clear Boulders", Category: CategoryCleanup, EnergyCost: 40, Prerequisites: []string{"clear_stumps", "pickaxe"}, Attributes: map[string]float64{"plots": 4, "stone": 8}},

	{ID: "auto_pump", Name: "Auto Pump", Category: CategoryUpgrade, GoldCost: 100, Attributes: map[string]float64{"pump_rate": DefaultAutoPumpRate}},
	{ID: "auto_harvest", Name: "Auto Harvest", Category: CategoryUpgrade, GoldCost: 250, Prerequisites: []string{"auto_pump"}},
	{ID: "auto_plant", Name: "Auto Plant", Category: CategoryUpgrade, GoldCost: 300, Prerequisites: []string{"auto_harvest"}},
	{ID: "fertilizer", Name: "Fertilizer", Category: CategoryUpgrade, GoldCost: 150, Prerequisites: []string{"clear_rocks"}, Attributes: map[string]float64{"growth_speed": 1.25}},
	{ID: "bellows", Name: "Bellows", Category: CategoryUpgrade, GoldCost: 120, Prerequisites: []string{"forge"}, Attributes: map[string]float64{"craft_speed": 1.5}},

	{ID: "well", Name: "Well", Category: CategoryBuilding, GoldCost: 60, MaterialCosts: map[string]int{"stone": 5}, Attributes: map[string]float64{"water_capacity": 50}},
	{ID: "forge", Name: "Forge", Category: CategoryBuilding, GoldCost: 80, MaterialCosts: map[string]int{"stone": 10}},
	{ID: "storehouse", Name: "Storehouse", Category: CategoryBuilding, GoldCost: 120, MaterialCosts: map[string]int{"wood": 8}, Prerequisites: []string{"clear_stumps"}, Attributes: map[string]float64{"energy_capacity": 50}},
	{ID: "workshop", Name: "Workshop", Category: CategoryBuilding, GoldCost: 200, MaterialCosts: map[string]int{"wood": 6, "copper": 4}, Prerequisites: []string{"forge"}, Attributes: map[string]float64{"forge_slots": 1}},

	{ID: "hoe", Name: "Hoe", Category: CategoryTool, GoldCost: 30, Attributes: map[string]float64{"growth_speed": 1.1}},
	{ID: "pickaxe", Name: "Pickaxe", Category: CategoryTool, GoldCost: 50, Attributes: map[string]float64{"mine_speed": 1.5}},
	{ID: "hammer", Name: "Hammer", Category: CategoryTool, MaterialCosts: map[string]int{"copper": 2, "wood": 1}, Duration: 30, Prerequisites: []string{"forge"}, Attributes: map[string]float64{"heat": 20, "craft_speed": 1.25}},

	{ID: "copper_sword", Name: "Copper Sword", Category: CategoryWeapon, MaterialCosts: map[string]int{"copper": 3}, Duration: 45, Prerequisites: []string{"forge"}, Attributes: map[string]float64{"heat": 30, "power": 5}},
	{ID: "iron_sword", Name: "Iron Sword", Category: CategoryWeapon, MaterialCosts: map[string]int{"iron": 3}, Duration: 90, Prerequisites: []string{"copper_sword"}, Attributes: map[string]float64{"heat": 60, "power": 10}},
	{ID: "leather_armor", Name: "Leather Armor", Category: CategoryArmor, GoldCost: 40, Attributes: map[string]float64{"power": 3}},
	{ID: "iron_armor", Name: "Iron Armor", Category: CategoryArmor, MaterialCosts: map[string]int{"iron": 4}, Duration: 120, Prerequisites: []string{"forge"}, Attributes: map[string]float64{"heat": 50, "power": 8}},

	{ID: "meadow_path", Name: "Meadow Path", Category: CategoryRoute, Duration: 30, Level: 1, Attributes: map[string]float64{"enemy_power": 1, "gold_reward": 20, "xp_reward": 15, "copper": 1}},
	{ID: "pine_vale", Name: "Pine Vale", Category: CategoryRoute, Duration: 60, Level: 3, Prerequisites: []string{"route:meadow_path"}, Attributes: map[string]float64{"enemy_power": 2, "gold_reward": 50, "xp_reward": 40, "iron": 1}},
	{ID: "dark_forest", Name: "Dark Forest", Category: CategoryRoute, Duration: 120, Level: 6, Prerequisites: []string{"route:pine_vale"}, Attributes: map[string]float64{"enemy_power": 4, "gold_reward": 120, "xp_reward": 100, "silver": 1}},

	{ID: "gnome_pip", Name: "Pip", Category: CategoryHelper, EnergyCost: 5, Prerequisites: []string{"route:meadow_path"}},
	{ID: "gnome_bramble", Name: "Bramble", Category: CategoryHelper, EnergyCost: 10, Prerequisites: []string{"route:pine_vale"}},
}

// DefaultGameData returns the built-in catalog.
func DefaultGameData() *GameData {
	d, err := NewGameData(defaultItems)
	if err != nil {
		panic(err)
	}
	return d
}

// MilestoneForRoute is the milestone recorded when a route is cleared.
func MilestoneForRoute(routeID string) string {
	return "route:" + routeID
}
