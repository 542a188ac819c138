package game

const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	MinutesPerDay  = MinutesPerHour * HoursPerDay

	DefaultTickMinutes = 10

	DefaultEnergyMax   = 100
	DefaultEnergyRegen = 0.05
	DefaultWaterMax    = 50
	DefaultStartGold   = 20
	DefaultTotalPlots  = 12
	DefaultOpenPlots   = 3
	DefaultForgeSlots  = 1
	DefaultStartScreen = ScreenFarm
	MaxScreenHistory   = 100

	PlotWaterMax            = 100.0
	CropWaterDrainPerMinute = PlotWaterMax / 480
	WitherAfterMinutes      = 240
	WaterPerPlot            = 5

	PlantEnergyCost   = 2
	HarvestEnergyCost = 1
	WaterEnergyCost   = 1
	PumpEnergyCost    = 2
	PumpWaterAmount   = 10

	CatchSeedsPerMinute   = 0.2
	CatchSeedsEnergyPer10 = 1

	StokeEnergyCost         = 3
	StokeHeat               = 25
	ForgeHeatMax            = 100
	ForgeHeatDecayPerMinute = 0.1

	MineEnergyCost  = 5
	MineBaseMinutes = 30
	MineDepthFactor = 0.1

	AdventureEnergyCost = 10
	HeroBasePower       = 4
	HeroPowerPerLevel   = 2

	TrainXPPerMinute     = 2
	TrainEnergyPerMinute = 0.2
	XPPerLevel           = 100

	HelperTrainGoldCost = 25
	HelperTrainXP       = 50
	HelperXPPerLevel    = 100
	HelperPumpPerMinute = 0.1
	HelperMineMinutes   = 60

	DefaultAutoPumpRate   = 0.5
	PumpWaterPerVirtual   = PumpWaterAmount
	PhaseMidUpgradeCount  = 3
	PhaseLateUpgradeCount = 7
)

// VariantMultiplier scales route duration and enemy count by route length.
var VariantMultiplier = map[string]float64{
	VariantShort:  1,
	VariantMedium: 2,
	VariantLong:   3,
}

// VariantEnemyRange is the inclusive enemy count range per route length.
var VariantEnemyRange = map[string][2]int{
	VariantShort:  {3, 5},
	VariantMedium: {6, 9},
	VariantLong:   {10, 14},
}

// VariantPowerBonus raises enemy power on longer routes.
var VariantPowerBonus = map[string]int{
	VariantShort:  0,
	VariantMedium: 1,
	VariantLong:   2,
}

// MiningTiers maps a minimum depth to the material it yields.
var MiningTiers = []struct {
	MinDepth int
	Material string
}{
	{MinDepth: 0, Material: "stone"},
	{MinDepth: 3, Material: "copper"},
	{MinDepth: 8, Material: "iron"},
	{MinDepth: 15, Material: "silver"},
}
