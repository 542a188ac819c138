package offline

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"timeherosim/internal/domain/game"
)

type WaterSummary struct {
	Generated float64 `json:"generated"`
	Used      float64 `json:"used"`
	Capacity  float64 `json:"capacity"`
}

type CropSummary struct {
	Planted   int            `json:"planted"`
	Harvested int            `json:"harvested"`
	Yield     map[string]int `json:"yield"`
}

type ResourceSummary struct {
	Energy    float64        `json:"energy"`
	Gold      float64        `json:"gold"`
	Materials map[string]int `json:"materials"`
}

type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

type OfflineResult struct {
	ElapsedMinutes int             `json:"elapsed_minutes"`
	Water          WaterSummary    `json:"water"`
	Crops          CropSummary     `json:"crops"`
	Resources      ResourceSummary `json:"resources"`
	VirtualActions int             `json:"virtual_actions"`
	Sections       []Section       `json:"sections"`
}

// Estimator credits what unlocked automation would have produced over an
// elapsed window without replaying ticks.
type Estimator struct {
	data *game.GameData
	log  *slog.Logger
}

func NewEstimator(data *game.GameData, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{data: data, log: logger}
}

type delta struct {
	water        float64
	waterUsed    float64
	energy       float64
	seedsUsed    map[string]int
	materials    map[string]int
	harvestPlots []int
	helperCarry  map[int]float64
	heatLoss     float64
}

// Calculate computes the window's totals, applies them to state in one step
// and advances the clock. Adventures and unlocks are never touched.
func (e *Estimator) Calculate(state *game.GameState, elapsedMinutes int) OfflineResult {
	res := OfflineResult{
		ElapsedMinutes: elapsedMinutes,
		Crops:          CropSummary{Yield: map[string]int{}},
		Resources:      ResourceSummary{Materials: map[string]int{}},
		Sections:       []Section{},
	}
	if state == nil || elapsedMinutes <= 0 {
		res.ElapsedMinutes = max(elapsedMinutes, 0)
		return res
	}
	elapsed := float64(elapsedMinutes)
	d := delta{seedsUsed: map[string]int{}, materials: map[string]int{}, helperCarry: map[int]float64{}}
	unlocked := state.Progression.UnlockedUpgrades

	// Water: auto pump plus pumper helpers, capped by tank headroom.
	rate := 0.0
	if unlocked.Has("auto_pump") {
		rate += e.pumpRate()
	}
	for _, h := range state.Helpers {
		if h.Role == game.RolePumper {
			rate += game.HelperPumpPerMinute * float64(h.Level)
		}
	}
	if rate > 0 {
		d.water = math.Min(state.Resources.Water.Headroom(), rate*elapsed)
		res.VirtualActions += int(d.water / game.PumpWaterPerVirtual)
	}
	res.Water = WaterSummary{Generated: d.water, Capacity: state.Resources.Water.Max}

	// Crops already waiting for a harvester.
	harvesting := unlocked.Has("auto_harvest") || hasRole(state, game.RoleHarvester)
	if harvesting {
		for _, idx := range game.ReadyPlots(state) {
			plot := state.Farm.Plots[idx]
			crop, yield, energy := e.cropYield(plot.Crop)
			d.materials[crop] += yield
			d.energy += energy
			res.Crops.Yield[crop] += yield
			res.Crops.Harvested++
			d.harvestPlots = append(d.harvestPlots, idx)
		}
	}

	// Repeating plant/harvest cycles on idle plots.
	if unlocked.Has("auto_plant") && unlocked.Has("auto_harvest") {
		e.cycles(state, elapsed, &d, &res)
	}

	// Miners dig at the current depth.
	for i, h := range state.Helpers {
		if h.Role != game.RoleMiner {
			continue
		}
		work := h.Progress + elapsed*float64(h.Level)
		found := int(work / game.HelperMineMinutes)
		d.helperCarry[i] = work - float64(found)*game.HelperMineMinutes
		if found > 0 {
			d.materials[game.MiningMaterial(state.Mine.Depth)] += found
			res.VirtualActions += found
		}
	}

	d.energy += state.Resources.Energy.Regen * elapsed
	d.heatLoss = math.Min(state.Forge.Heat, elapsed*game.ForgeHeatDecayPerMinute)

	e.apply(state, elapsedMinutes, &d, &res)
	res.Sections = sections(res)
	e.log.Info("offline progression applied",
		"minutes", elapsedMinutes,
		"water", res.Water.Generated,
		"harvested", res.Crops.Harvested,
		"virtual_actions", res.VirtualActions,
	)
	return res
}

func (e *Estimator) cycles(state *game.GameState, elapsed float64, d *delta, res *OfflineResult) {
	crop, seeds := state.Resources.Seeds.Dominant()
	if crop == "" || seeds == 0 {
		return
	}
	rec, ok := e.data.Item(crop)
	if !ok || rec.Category != game.CategoryCrop {
		return
	}
	cycle := float64(rec.Duration) / state.SpeedMultiplier(game.ProcessCropGrowth, e.data)
	if cycle <= 0 {
		return
	}
	plots := 0
	for _, p := range state.Farm.Plots {
		if p.Unlocked && (p.Empty() || p.Ready) {
			plots++
		}
	}
	perPlot := int(math.Floor(elapsed / cycle))
	water := state.Resources.Water.Current + d.water
	total := min(plots*perPlot, seeds, int(water/game.WaterPerPlot))
	if total <= 0 {
		return
	}
	_, yield, energy := e.cropYield(crop)
	d.seedsUsed[crop] += total
	d.waterUsed = float64(total) * game.WaterPerPlot
	d.materials[crop] += total * yield
	d.energy += float64(total) * energy
	res.Crops.Planted += total
	res.Crops.Harvested += total
	res.Crops.Yield[crop] += total * yield
	res.VirtualActions += 2 * total
}

func (e *Estimator) apply(state *game.GameState, minutes int, d *delta, res *OfflineResult) {
	r := &state.Resources
	r.Water.Add(d.water)
	res.Water.Used = r.Water.Drain(d.waterUsed)
	res.Resources.Energy = r.Energy.Add(d.energy)
	for id, n := range d.seedsUsed {
		r.Seeds.Drain(id, n)
	}
	for _, id := range sortedKeys(d.materials) {
		r.Materials.Add(id, d.materials[id])
		res.Resources.Materials[id] = d.materials[id]
	}
	for _, idx := range d.harvestPlots {
		p := &state.Farm.Plots[idx]
		p.Crop = ""
		p.Ready = false
		p.ProcessID = ""
	}
	for i, carry := range d.helperCarry {
		state.Helpers[i].Progress = carry
	}
	state.Forge.Heat -= d.heatLoss
	state.Time.Advance(minutes)
}

func (e *Estimator) pumpRate() float64 {
	if rec, ok := e.data.Item("auto_pump"); ok && rec.Attr("pump_rate") > 0 {
		return rec.Attr("pump_rate")
	}
	return game.DefaultAutoPumpRate
}

func (e *Estimator) cropYield(crop string) (string, int, float64) {
	rec, ok := e.data.Item(crop)
	if !ok {
		return crop, 1, 0
	}
	yield := max(rec.Yield, 1)
	return crop, yield, rec.Attr("energy_value") * float64(yield)
}

func hasRole(state *game.GameState, role game.HelperRole) bool {
	for _, h := range state.Helpers {
		if h.Role == role {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sections(res OfflineResult) []Section {
	out := []Section{{
		Title: "Time away",
		Lines: []string{fmt.Sprintf("%dh %02dm", res.ElapsedMinutes/game.MinutesPerHour, res.ElapsedMinutes%game.MinutesPerHour)},
	}}
	if res.Water.Generated > 0 || res.Water.Used > 0 {
		out = append(out, Section{Title: "Water", Lines: []string{
			fmt.Sprintf("generated %.1f", res.Water.Generated),
			fmt.Sprintf("used %.1f", res.Water.Used),
		}})
	}
	if res.Crops.Harvested > 0 {
		lines := []string{fmt.Sprintf("planted %d, harvested %d", res.Crops.Planted, res.Crops.Harvested)}
		for _, id := range sortedKeys(res.Crops.Yield) {
			lines = append(lines, fmt.Sprintf("%s x%d", id, res.Crops.Yield[id]))
		}
		out = append(out, Section{Title: "Crops", Lines: lines})
	}
	if len(res.Resources.Materials) > 0 || res.Resources.Energy > 0 {
		lines := []string{fmt.Sprintf("energy +%.1f", res.Resources.Energy)}
		for _, id := range sortedKeys(res.Resources.Materials) {
			lines = append(lines, fmt.Sprintf("%s +%d", id, res.Resources.Materials[id]))
		}
		out = append(out, Section{Title: "Resources", Lines: lines})
	}
	return out
}
