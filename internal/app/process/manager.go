package process

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"timeherosim/internal/domain/game"
)

// RollSource supplies the cached encounter for an adventure route.
type RollSource interface {
	GetRoll(routeID, variant string) game.RouteRoll
	ClearRoll(routeID, variant, reason string) bool
}

type TickSummary struct {
	Completed []game.Process     `json:"completed"`
	Failed    []game.Process     `json:"failed"`
	Events    []game.DomainEvent `json:"events"`
}

// Manager owns every in-flight process. It is not safe for concurrent use;
// the engine drives it from a single goroutine.
type Manager struct {
	data   *game.GameData
	rolls  RollSource
	log    *slog.Logger
	nextID int
	procs  map[string]*game.Process
	order  []string
}

func NewManager(data *game.GameData, rolls RollSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		data:  data,
		rolls: rolls,
		log:   logger,
		procs: map[string]*game.Process{},
	}
}

// Start validates kind-specific preconditions and registers a process.
// A refusal returns nil, false and leaves state untouched.
func (m *Manager) Start(kind game.ProcessKind, req game.StartRequest, state *game.GameState) (*game.Process, bool) {
	if state == nil || !kind.Valid() {
		return nil, false
	}
	var p *game.Process
	switch kind {
	case game.ProcessCropGrowth:
		p = m.prepareCrop(req, state)
	case game.ProcessCrafting:
		p = m.prepareCraft(req, state)
	case game.ProcessMining:
		p = m.prepareMining(state)
	case game.ProcessAdventure:
		p = m.prepareAdventure(req, state)
	}
	if p == nil {
		return nil, false
	}

	m.nextID++
	p.ID = fmt.Sprintf("%s-%06d", kind, m.nextID)
	p.Kind = kind
	p.StartedAt = state.Time.TotalMinutes

	switch kind {
	case game.ProcessCropGrowth:
		plot := state.Plot(req.PlotIndex)
		plot.Crop = req.Item
		plot.ProcessID = p.ID
	case game.ProcessAdventure:
		state.Adventure.ActiveRoute = req.Route
		state.Adventure.Variant = req.Variant
	}

	m.procs[p.ID] = p
	m.order = append(m.order, p.ID)
	out := *p
	return &out, true
}

func (m *Manager) prepareCrop(req game.StartRequest, state *game.GameState) *game.Process {
	plot := state.Plot(req.PlotIndex)
	if plot == nil || !plot.Unlocked || !plot.Empty() {
		return nil
	}
	rec, ok := m.data.Item(req.Item)
	if !ok || rec.Category != game.CategoryCrop || !state.PrerequisitesMet(rec) {
		return nil
	}
	duration := float64(rec.Duration)
	if duration <= 0 {
		duration = 60
	}
	return &game.Process{
		Ref:      "plot-" + strconv.Itoa(plot.Index),
		Duration: duration,
		Data:     game.ProcessData{Item: rec.ID, PlotIndex: plot.Index},
	}
}

func (m *Manager) prepareCraft(req game.StartRequest, state *game.GameState) *game.Process {
	rec, ok := m.data.Item(req.Item)
	if !ok || !game.Craftable(rec) || !state.PrerequisitesMet(rec) {
		return nil
	}
	if m.countKind(game.ProcessCrafting) >= state.Forge.Slots || m.HasItemInFlight(game.ProcessCrafting, rec.ID) {
		return nil
	}
	if state.Forge.Heat < rec.Attr("heat") {
		return nil
	}
	return &game.Process{
		Ref:      "forge-slot-" + strconv.Itoa(m.freeForgeSlot()),
		Duration: game.CraftDuration(rec),
		Data:     game.ProcessData{Item: rec.ID},
	}
}

func (m *Manager) prepareMining(state *game.GameState) *game.Process {
	if m.countKind(game.ProcessMining) > 0 {
		return nil
	}
	depth := state.Mine.Depth
	return &game.Process{
		Ref:      "mine-shaft",
		Duration: game.MineDuration(depth),
		Data:     game.ProcessData{Depth: depth},
	}
}

func (m *Manager) prepareAdventure(req game.StartRequest, state *game.GameState) *game.Process {
	if m.countKind(game.ProcessAdventure) > 0 || state.Adventure.ActiveRoute != "" {
		return nil
	}
	if !game.IsRouteVariant(req.Variant) {
		return nil
	}
	rec, ok := m.data.Item(req.Route)
	if !ok || rec.Category != game.CategoryRoute || !state.PrerequisitesMet(rec) {
		return nil
	}
	return &game.Process{
		Ref:      "route-" + rec.ID,
		Duration: game.RouteDuration(rec, req.Variant),
		Data:     game.ProcessData{Route: rec.ID, Variant: req.Variant},
	}
}

// Tick advances every process by elapsed minutes scaled by its own rate.
// Resolved processes are removed and their effects applied in this call.
func (m *Manager) Tick(elapsed float64, state *game.GameState, data *game.GameData) TickSummary {
	return m.TickWhere(elapsed, state, data, nil)
}

// TickWhere is Tick restricted to processes accepted by keep. Others are
// left untouched. A nil keep accepts every process.
func (m *Manager) TickWhere(elapsed float64, state *game.GameState, data *game.GameData, keep func(game.Process) bool) TickSummary {
	summary := TickSummary{
		Completed: []game.Process{},
		Failed:    []game.Process{},
		Events:    []game.DomainEvent{},
	}
	if elapsed <= 0 || state == nil {
		return summary
	}
	if data == nil {
		data = m.data
	}

	remaining := m.order[:0]
	for _, id := range m.order {
		p := m.procs[id]
		if keep != nil && !keep(*p) {
			remaining = append(remaining, id)
			continue
		}
		rate := state.SpeedMultiplier(p.Kind, data)
		p.Progress += elapsed * rate
		if p.Progress > p.Duration {
			p.Progress = p.Duration
		}

		withered := false
		if p.Kind == game.ProcessCropGrowth {
			withered = m.drainCropWater(p, elapsed, state)
		}

		switch {
		case p.Done():
			events, ok := m.resolve(p, state, data)
			summary.Events = append(summary.Events, events...)
			if ok {
				summary.Completed = append(summary.Completed, *p)
			} else {
				summary.Failed = append(summary.Failed, *p)
			}
			delete(m.procs, id)
		case withered:
			summary.Events = append(summary.Events, m.wither(p, state))
			summary.Failed = append(summary.Failed, *p)
			delete(m.procs, id)
		default:
			remaining = append(remaining, id)
		}
	}
	m.order = remaining
	return summary
}

// drainCropWater lowers the plot's water and reports whether the crop has
// been dry long enough to wither.
func (m *Manager) drainCropWater(p *game.Process, elapsed float64, state *game.GameState) bool {
	plot := state.Plot(p.Data.PlotIndex)
	if plot == nil {
		return true
	}
	need := elapsed * game.CropWaterDrainPerMinute
	if plot.WaterLevel >= need {
		plot.WaterLevel -= need
		p.Data.DryMinutes = 0
		return false
	}
	wetMinutes := plot.WaterLevel / game.CropWaterDrainPerMinute
	plot.WaterLevel = 0
	p.Data.DryMinutes += elapsed - wetMinutes
	return p.Data.DryMinutes >= game.WitherAfterMinutes
}

func (m *Manager) wither(p *game.Process, state *game.GameState) game.DomainEvent {
	if plot := state.Plot(p.Data.PlotIndex); plot != nil {
		plot.Withered = true
		plot.Ready = false
		plot.ProcessID = ""
	}
	m.log.Debug("crop withered", "process", p.ID, "plot", p.Data.PlotIndex, "crop", p.Data.Item)
	return event(state, "crop_withered", fmt.Sprintf("%s on plot %d withered", p.Data.Item, p.Data.PlotIndex), map[string]any{
		"process_id":  p.ID,
		"plot":        p.Data.PlotIndex,
		"crop":        p.Data.Item,
		"dry_minutes": p.Data.DryMinutes,
	})
}

func (m *Manager) resolve(p *game.Process, state *game.GameState, data *game.GameData) ([]game.DomainEvent, bool) {
	switch p.Kind {
	case game.ProcessCropGrowth:
		return m.resolveCrop(p, state, data), true
	case game.ProcessCrafting:
		return m.resolveCraft(p, state, data), true
	case game.ProcessMining:
		return m.resolveMining(p, state), true
	case game.ProcessAdventure:
		return m.resolveAdventure(p, state, data)
	}
	return nil, false
}

func (m *Manager) resolveCrop(p *game.Process, state *game.GameState, data *game.GameData) []game.DomainEvent {
	plot := state.Plot(p.Data.PlotIndex)
	if plot == nil {
		return nil
	}
	plot.Ready = true
	plot.ProcessID = ""
	events := []game.DomainEvent{event(state, "crop_ready", fmt.Sprintf("%s on plot %d is ready", p.Data.Item, plot.Index), map[string]any{
		"process_id": p.ID,
		"plot":       plot.Index,
		"crop":       p.Data.Item,
	})}
	if !state.Progression.UnlockedUpgrades.Has("auto_harvest") {
		return events
	}
	if crop, yield, ok := game.HarvestPlot(state, plot.Index, data); ok {
		events = append(events, event(state, "crop_harvested", fmt.Sprintf("auto-harvested %d %s", yield, crop), map[string]any{
			"plot":  p.Data.PlotIndex,
			"crop":  crop,
			"yield": yield,
			"auto":  true,
		}))
	}
	return events
}

func (m *Manager) resolveCraft(p *game.Process, state *game.GameState, data *game.GameData) []game.DomainEvent {
	rec, ok := data.Item(p.Data.Item)
	if !ok {
		return nil
	}
	state.Equip(rec)
	return []game.DomainEvent{event(state, "item_crafted", "crafted "+rec.Name, map[string]any{
		"process_id": p.ID,
		"item":       rec.ID,
		"category":   string(rec.Category),
	})}
}

func (m *Manager) resolveMining(p *game.Process, state *game.GameState) []game.DomainEvent {
	state.Mine.Depth = p.Data.Depth + 1
	material := game.MiningMaterial(state.Mine.Depth)
	amount := game.MiningYield(state.Mine.Depth)
	state.Resources.Materials.Add(material, amount)
	return []game.DomainEvent{event(state, "mining_completed", fmt.Sprintf("reached depth %d, found %d %s", state.Mine.Depth, amount, material), map[string]any{
		"process_id": p.ID,
		"depth":      state.Mine.Depth,
		"material":   material,
		"amount":     amount,
	})}
}

func (m *Manager) resolveAdventure(p *game.Process, state *game.GameState, data *game.GameData) ([]game.DomainEvent, bool) {
	route, variant := p.Data.Route, p.Data.Variant
	state.Adventure.ActiveRoute = ""
	state.Adventure.Variant = ""
	if m.rolls == nil {
		return nil, false
	}
	roll := m.rolls.GetRoll(route, variant)
	rec, _ := data.Item(route)
	power := state.HeroPower(data)
	victory := game.ResolveCombat(power, roll)

	payload := map[string]any{
		"process_id":  p.ID,
		"route":       route,
		"variant":     variant,
		"enemy_count": roll.EnemyCount,
		"hero_power":  power,
		"victory":     victory,
	}
	if !victory {
		state.Adventure.Defeats++
		xp := int(rec.Attr("xp_reward")) / 4
		state.AddExperience(xp)
		payload["xp"] = xp
		m.rolls.ClearRoll(route, variant, "defeat")
		return []game.DomainEvent{event(state, "adventure_completed", fmt.Sprintf("defeated on %s (%s)", route, variant), payload)}, false
	}

	mult := game.VariantMultiplier[variant]
	gold := rec.Attr("gold_reward") * mult
	xp := int(rec.Attr("xp_reward") * mult)
	state.Resources.Gold.Add(gold)
	levels := state.AddExperience(xp)
	loot := map[string]int{}
	for _, tier := range game.MiningTiers {
		if n := int(rec.Attr(tier.Material)) * roll.EnemyCount; n > 0 {
			state.Resources.Materials.Add(tier.Material, n)
			loot[tier.Material] = n
		}
	}
	state.Adventure.Victories++
	state.Progression.CompletedMilestones.Add(game.MilestoneForRoute(route))
	m.rolls.ClearRoll(route, variant, "complete")

	payload["gold"] = gold
	payload["xp"] = xp
	payload["levels_gained"] = levels
	payload["loot"] = loot
	return []game.DomainEvent{event(state, "adventure_completed", fmt.Sprintf("cleared %s (%s)", route, variant), payload)}, true
}

// Cancel removes a process without resolving it.
func (m *Manager) Cancel(id string, state *game.GameState) bool {
	p, ok := m.procs[id]
	if !ok {
		return false
	}
	delete(m.procs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if state == nil {
		return true
	}
	switch p.Kind {
	case game.ProcessCropGrowth:
		if plot := state.Plot(p.Data.PlotIndex); plot != nil && plot.ProcessID == id {
			plot.Crop = ""
			plot.ProcessID = ""
		}
	case game.ProcessAdventure:
		state.Adventure.ActiveRoute = ""
		state.Adventure.Variant = ""
		if m.rolls != nil {
			m.rolls.ClearRoll(p.Data.Route, p.Data.Variant, "abandoned")
		}
	}
	return true
}

// Active returns copies of all registered processes in start order.
func (m *Manager) Active() []game.Process {
	out := make([]game.Process, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.procs[id])
	}
	return out
}

func (m *Manager) Get(id string) (game.Process, bool) {
	p, ok := m.procs[id]
	if !ok {
		return game.Process{}, false
	}
	return *p, true
}

func (m *Manager) CountKind(kind game.ProcessKind) int {
	return m.countKind(kind)
}

// HasItemInFlight reports whether a process of kind is already producing item.
func (m *Manager) HasItemInFlight(kind game.ProcessKind, item string) bool {
	for _, p := range m.procs {
		if p.Kind == kind && p.Data.Item == item {
			return true
		}
	}
	return false
}

// freeForgeSlot returns the lowest slot index no running craft holds.
func (m *Manager) freeForgeSlot() int {
	held := map[string]bool{}
	for _, p := range m.procs {
		if p.Kind == game.ProcessCrafting {
			held[p.Ref] = true
		}
	}
	slot := 0
	for held["forge-slot-"+strconv.Itoa(slot)] {
		slot++
	}
	return slot
}

func (m *Manager) countKind(kind game.ProcessKind) int {
	n := 0
	for _, p := range m.procs {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func (m *Manager) Len() int {
	return len(m.order)
}

// Sequence is the number of the last assigned process id.
func (m *Manager) Sequence() int {
	return m.nextID
}

// Restore replaces the registry with previously exported processes. New ids
// continue after seq or the highest restored id, whichever is larger.
func (m *Manager) Restore(procs []game.Process, seq int) {
	m.procs = make(map[string]*game.Process, len(procs))
	m.order = make([]string, 0, len(procs))
	m.nextID = max(seq, 0)
	for i := range procs {
		p := procs[i]
		m.procs[p.ID] = &p
		m.order = append(m.order, p.ID)
		if n := idSequence(p.ID); n > m.nextID {
			m.nextID = n
		}
	}
}

func idSequence(id string) int {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func event(state *game.GameState, typ, desc string, data map[string]any) game.DomainEvent {
	return game.DomainEvent{
		Type:        typ,
		Description: desc,
		Data:        data,
		OccurredAt:  state.Time.TotalMinutes,
	}
}
