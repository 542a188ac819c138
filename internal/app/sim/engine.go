package sim

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"timeherosim/internal/app/ai"
	"timeherosim/internal/app/offline"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/process"
	"timeherosim/internal/app/rolls"
	"timeherosim/internal/app/router"
	"timeherosim/internal/domain/game"
	"timeherosim/internal/domain/systems"
)

const (
	ReasonVictory    = "victory"
	ReasonBottleneck = "bottleneck"
	ReasonManual     = "manual"
	ReasonDuration   = "duration"
)

type Stats struct {
	RunID              string         `json:"run_id"`
	Persona            string         `json:"persona"`
	Ticks              int64          `json:"ticks"`
	DaysPassed         int            `json:"days_passed"`
	ActionsTaken       int            `json:"actions_taken"`
	ActionsFailed      int            `json:"actions_failed"`
	ProcessesCompleted int            `json:"processes_completed"`
	ProcessesFailed    int            `json:"processes_failed"`
	ByAction           map[string]int `json:"by_action"`
	OfflineMinutes     int            `json:"offline_minutes"`
}

func (s Stats) clone() Stats {
	out := s
	out.ByAction = make(map[string]int, len(s.ByAction))
	for k, v := range s.ByAction {
		out.ByAction[k] = v
	}
	return out
}

type ActionOutcome struct {
	Action game.Action       `json:"action"`
	Result game.ActionResult `json:"result"`
}

type TickResult struct {
	Tick       int64              `json:"tick"`
	IsComplete bool               `json:"is_complete"`
	IsStuck    bool               `json:"is_stuck"`
	Actions    []ActionOutcome    `json:"actions"`
	Completed  []game.Process     `json:"completed"`
	Failed     []game.Process     `json:"failed"`
	Events     []game.DomainEvent `json:"events"`
}

type Completion struct {
	Reason     string          `json:"reason"`
	FinalState *game.GameState `json:"final_state"`
	Stats      Stats           `json:"stats"`
	Summary    string          `json:"summary"`
}

type StateView struct {
	GameState *game.GameState `json:"game_state"`
	Stats     Stats           `json:"stats"`
	Processes []game.Process  `json:"processes"`
	Complete  *Completion     `json:"completion,omitempty"`
}

// ActionError reports an action the router rejected.
type ActionError struct {
	Action  game.Action
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Action.Type, e.Action.Target, e.Message)
}

// Engine is the synchronous simulation core. A single goroutine owns it;
// Runner provides message passing for concurrent hosts.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
	data     *game.GameData
	state    *game.GameState
	procs    *process.Manager
	rolls    *rolls.Cache
	router   *router.Router
	decider  *ai.Decider
	offline  *offline.Estimator
	forge    *systems.Forge
	helpers  *systems.Helper
	stats    Stats
	done     *Completion
	stuckFor int
	score    float64
	// shortage holds last tick's available amount per bottleneck.
	shortage map[ai.BottleneckType]float64

	onTick     []func(TickResult)
	onComplete []func(Completion)
	onError    []func(error)
	onDay      []func(day int)
}

// Initialize validates cfg and builds a ready engine. No state exists when
// the config is rejected.
func Initialize(cfg Config, metrics ports.ActionMetrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	logger := cfg.Logger.With("run_id", cfg.RunID)

	e := &Engine{
		cfg:  cfg,
		log:  logger,
		now:  cfg.Now,
		data: cfg.Data,
	}
	e.rolls = rolls.NewCache(cfg.Data, rolls.Config{TTL: cfg.RollTTL, Now: cfg.Now}, logger)
	e.procs = process.NewManager(cfg.Data, e.rolls, logger)
	e.forge = systems.NewForge(cfg.Data, e.procs)
	e.helpers = systems.NewHelper(cfg.Data)
	r, err := router.New(logger, metrics,
		systems.NewFarm(cfg.Data, e.procs),
		systems.NewTower(cfg.Data),
		systems.NewTown(cfg.Data),
		systems.NewAdventure(cfg.Data, e.procs),
		e.forge,
		systems.NewMine(e.procs),
		e.helpers,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e.router = r
	e.decider = newDecider(cfg)
	e.offline = offline.NewEstimator(cfg.Data, logger)

	if cfg.Initial != nil {
		e.state = cfg.Initial.Clone()
	} else {
		e.state = game.NewGameState()
	}
	e.stats = Stats{RunID: cfg.RunID, Persona: cfg.Persona, ByAction: map[string]int{}}
	e.score = progressScore(e.state)
	e.log.Info("simulation initialized",
		"persona", cfg.Persona,
		"strategy", ai.PersonaStrategy(cfg.Persona),
		"tick_minutes", cfg.TickMinutes,
		"max_days", cfg.MaxDays,
	)
	return e, nil
}

func newDecider(cfg Config) *ai.Decider {
	return ai.NewDecider(cfg.Data, cfg.Persona, cfg.Thresholds)
}

func (e *Engine) RunID() string { return e.cfg.RunID }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) OnTick(fn func(TickResult))     { e.onTick = append(e.onTick, fn) }
func (e *Engine) OnComplete(fn func(Completion)) { e.onComplete = append(e.onComplete, fn) }
func (e *Engine) OnError(fn func(error))         { e.onError = append(e.onError, fn) }
func (e *Engine) OnDay(fn func(day int))         { e.onDay = append(e.onDay, fn) }

// Route dispatches one external action outside the AI loop.
func (e *Engine) Route(a game.Action) game.ActionResult {
	res := e.router.Route(a, e.state)
	e.countAction(a, res)
	return res
}

// Tick runs one decision, dispatch and advancement step.
func (e *Engine) Tick() TickResult {
	if e.done != nil {
		return TickResult{Tick: e.stats.Ticks, IsComplete: true}
	}
	e.stats.Ticks++
	out := TickResult{
		Tick:      e.stats.Ticks,
		Actions:   []ActionOutcome{},
		Completed: []game.Process{},
		Failed:    []game.Process{},
		Events:    []game.DomainEvent{},
	}
	day := e.state.Time.Day
	progressed := false

	for _, a := range e.decider.Decide(e.state, e.procs) {
		res := e.router.Route(a, e.state)
		e.countAction(a, res)
		out.Actions = append(out.Actions, ActionOutcome{Action: a, Result: res})
		out.Events = append(out.Events, res.Events...)
		if res.Success && a.Type != game.ActionMove && a.Type != game.ActionWait {
			progressed = true
		}
	}

	minutes := e.cfg.TickMinutes
	summary := e.procs.Tick(float64(minutes), e.state, e.data)
	out.Completed = append(out.Completed, summary.Completed...)
	out.Failed = append(out.Failed, summary.Failed...)
	out.Events = append(out.Events, summary.Events...)
	e.stats.ProcessesCompleted += len(summary.Completed)
	e.stats.ProcessesFailed += len(summary.Failed)
	if len(summary.Completed) > 0 {
		progressed = true
	}

	out.Events = append(out.Events, e.automate(float64(minutes))...)
	e.state.Location.TimeOnScreen += minutes
	e.state.Time.Advance(minutes)
	e.state.RefreshPhase()
	e.stats.DaysPassed = e.state.Time.DaysPassed()

	if score := progressScore(e.state); score > e.score {
		e.score = score
		progressed = true
	}
	eased := e.easing()
	if progressed || eased || e.procs.Len() > 0 {
		e.stuckFor = 0
	} else {
		e.stuckFor++
	}

	if e.state.Time.Day != day {
		e.dailyReport(day)
	}

	switch {
	case e.victorious():
		e.complete(ReasonVictory)
	case e.stuckFor >= e.cfg.StuckTicks:
		out.IsStuck = true
		e.complete(ReasonBottleneck)
	case e.state.Time.Day > e.cfg.MaxDays:
		e.complete(ReasonDuration)
	}
	out.IsComplete = e.done != nil

	for _, fn := range e.onTick {
		fn(out)
	}
	return out
}

// automate applies passive effects that run every tick regardless of
// player actions.
func (e *Engine) automate(minutes float64) []game.DomainEvent {
	r := &e.state.Resources
	if e.state.Progression.UnlockedUpgrades.Has("auto_pump") {
		rate := game.DefaultAutoPumpRate
		if rec, ok := e.data.Item("auto_pump"); ok && rec.Attr("pump_rate") > 0 {
			rate = rec.Attr("pump_rate")
		}
		r.Water.Add(rate * minutes)
	}
	events := e.helpers.Work(e.state, minutes)
	e.forge.Cool(e.state, minutes)
	r.Energy.Regenerate(minutes)
	r.Water.Regenerate(minutes)
	return events
}

// easing reports whether any current bottleneck has more available than on
// the previous tick, meaning it is resolving without player action.
func (e *Engine) easing() bool {
	list := e.decider.Bottlenecks(e.state)
	next := make(map[ai.BottleneckType]float64, len(list))
	eased := false
	for _, b := range list {
		next[b.Type] = b.Available
		if prev, ok := e.shortage[b.Type]; ok && b.Available > prev {
			eased = true
		}
	}
	e.shortage = next
	return eased
}

func (e *Engine) countAction(a game.Action, res game.ActionResult) {
	e.stats.ActionsTaken++
	e.stats.ByAction[string(a.Type)]++
	if res.Success {
		return
	}
	e.stats.ActionsFailed++
	err := &ActionError{Action: a, Message: res.Error}
	for _, fn := range e.onError {
		fn(err)
	}
}

func (e *Engine) victorious() bool {
	if len(e.cfg.Victory) == 0 {
		return false
	}
	for _, id := range e.cfg.Victory {
		if !e.state.Progression.CompletedMilestones.Has(id) {
			return false
		}
	}
	return true
}

// progressScore grows whenever the player gets richer or further along.
func progressScore(s *game.GameState) float64 {
	score := s.Resources.Gold.Current
	score += float64(s.Resources.Materials.Total() + s.Resources.Seeds.Total())
	score += float64(s.Progression.HeroLevel*100 + s.Progression.Experience)
	score += float64(len(s.Progression.UnlockedUpgrades)+len(s.Progression.CompletedMilestones)) * 50
	score += float64(s.UnlockedPlotCount()*20 + s.Mine.Depth*10 + len(s.Helpers)*40)
	return score
}

func (e *Engine) dailyReport(day int) {
	s := e.state
	e.log.Info("daily report",
		"day", day,
		"tick", e.stats.Ticks,
		"gold", s.Resources.Gold.Current,
		"energy", s.Resources.Energy.Current,
		"water", s.Resources.Water.Current,
		"hero_level", s.Progression.HeroLevel,
		"upgrades", len(s.Progression.UnlockedUpgrades),
		"phase", s.Progression.CurrentPhase,
		"processes", e.procs.Len(),
		"active_rolls", e.rolls.Statistics().TotalActiveRolls,
	)
	e.rolls.Sweep()
	for _, fn := range e.onDay {
		fn(day)
	}
}

// Stop ends the run by request. It is a no-op once completed.
func (e *Engine) Stop() {
	if e.done == nil {
		e.complete(ReasonManual)
	}
}

func (e *Engine) complete(reason string) {
	c := e.completion(reason)
	e.done = &c
	e.log.Info("simulation completed", "reason", reason, "ticks", c.Stats.Ticks, "days", c.Stats.DaysPassed)
	for _, fn := range e.onComplete {
		fn(c)
	}
}

func (e *Engine) completion(reason string) Completion {
	stats := e.stats.clone()
	return Completion{
		Reason:     reason,
		FinalState: e.state.Clone(),
		Stats:      stats,
		Summary:    summarize(reason, e.state, stats),
	}
}

func summarize(reason string, s *game.GameState, stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s run ended (%s) after %d days and %d ticks. ", stats.Persona, reason, stats.DaysPassed, stats.Ticks)
	fmt.Fprintf(&b, "Hero level %d, %.0f gold, %d upgrades, %d milestones, phase %s.",
		s.Progression.HeroLevel,
		s.Resources.Gold.Current,
		len(s.Progression.UnlockedUpgrades),
		len(s.Progression.CompletedMilestones),
		s.Progression.CurrentPhase,
	)
	return b.String()
}

func (e *Engine) Completion() (Completion, bool) {
	if e.done == nil {
		return Completion{}, false
	}
	return *e.done, true
}

// GetState returns deep copies safe to hand to other goroutines.
func (e *Engine) GetState() StateView {
	v := StateView{
		GameState: e.state.Clone(),
		Stats:     e.stats.clone(),
		Processes: e.procs.Active(),
	}
	if e.done != nil {
		c := *e.done
		v.Complete = &c
	}
	return v
}

func (e *Engine) Bottlenecks() []ai.Bottleneck {
	return e.decider.Bottlenecks(e.state)
}

func (e *Engine) RollStatistics() rolls.Statistics {
	return e.rolls.Statistics()
}

// CatchUp applies an offline window. Processes other than adventures
// advance in one step before automation is estimated.
func (e *Engine) CatchUp(minutes int) (offline.OfflineResult, error) {
	if e.done != nil {
		return offline.OfflineResult{}, ErrCompleted
	}
	if minutes <= 0 {
		return offline.OfflineResult{}, fmt.Errorf("%w: offline minutes must be positive", ErrInvalidConfig)
	}
	summary := e.procs.TickWhere(float64(minutes), e.state, e.data, func(p game.Process) bool {
		return p.Kind != game.ProcessAdventure
	})
	e.stats.ProcessesCompleted += len(summary.Completed)
	e.stats.ProcessesFailed += len(summary.Failed)
	res := e.offline.Calculate(e.state, minutes)
	e.stats.OfflineMinutes += minutes
	e.stats.DaysPassed = e.state.Time.DaysPassed()
	e.score = max(e.score, progressScore(e.state))
	return res, nil
}
