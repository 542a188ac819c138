package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeherosim/internal/app/ai"
	"timeherosim/internal/app/offline"
	"timeherosim/internal/app/rolls"
	"timeherosim/internal/domain/game"
)

const MaxSpeed = 1000

var ErrRunnerClosed = errors.New("simulation runner is not running")

type Status struct {
	Running bool    `json:"running"`
	Speed   float64 `json:"speed"`
	Tick    int64   `json:"tick"`
}

// Runner owns an Engine on a single goroutine and paces ticks at
// Interval/Speed while running. Every method is a message to that loop.
type Runner struct {
	engine   *Engine
	interval time.Duration
	cmds     chan func(*loop)
	closed   chan struct{}
}

type loop struct {
	engine  *Engine
	running bool
	speed   float64
	ticker  *time.Ticker
	base    time.Duration
}

func (l *loop) pace() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
	if l.running && l.speed > 0 {
		l.ticker = time.NewTicker(time.Duration(float64(l.base) / l.speed))
	}
}

func (l *loop) halt() {
	l.running = false
	l.pace()
}

func NewRunner(engine *Engine, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		engine:   engine,
		interval: interval,
		cmds:     make(chan func(*loop)),
		closed:   make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled. Ticks only happen between Start and
// Pause/Stop or completion.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.closed)
	l := &loop{engine: r.engine, speed: 1, base: r.interval}
	defer l.halt()
	r.engine.log.Info("simulation runner started", "interval", r.interval)

	for {
		var tick <-chan time.Time
		if l.ticker != nil {
			tick = l.ticker.C
		}
		select {
		case <-ctx.Done():
			r.engine.log.Info("simulation runner stopped", "tick", r.engine.stats.Ticks)
			return
		case cmd := <-r.cmds:
			cmd(l)
		case <-tick:
			if res := l.engine.Tick(); res.IsComplete {
				l.halt()
			}
		}
	}
}

func (r *Runner) do(ctx context.Context, fn func(*loop)) error {
	done := make(chan struct{})
	cmd := func(l *loop) {
		defer close(done)
		fn(l)
	}
	select {
	case r.cmds <- cmd:
	case <-r.closed:
		return ErrRunnerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

func validSpeed(speed float64) error {
	if speed <= 0 || speed > MaxSpeed {
		return fmt.Errorf("%w: speed must be within (0,%d], got %g", ErrInvalidConfig, MaxSpeed, speed)
	}
	return nil
}

func (r *Runner) Start(ctx context.Context, speed float64) error {
	if err := validSpeed(speed); err != nil {
		return err
	}
	var err error
	if doErr := r.do(ctx, func(l *loop) {
		if _, done := l.engine.Completion(); done {
			err = ErrCompleted
			return
		}
		l.running = true
		l.speed = speed
		l.engine.state.Time.Speed = speed
		l.pace()
	}); doErr != nil {
		return doErr
	}
	return err
}

func (r *Runner) Pause(ctx context.Context) error {
	return r.do(ctx, func(l *loop) { l.halt() })
}

// Stop completes the run with the manual reason and returns the completion.
func (r *Runner) Stop(ctx context.Context) (Completion, error) {
	var c Completion
	err := r.do(ctx, func(l *loop) {
		l.halt()
		l.engine.Stop()
		c, _ = l.engine.Completion()
	})
	return c, err
}

func (r *Runner) SetSpeed(ctx context.Context, speed float64) error {
	if err := validSpeed(speed); err != nil {
		return err
	}
	return r.do(ctx, func(l *loop) {
		l.speed = speed
		l.engine.state.Time.Speed = speed
		l.pace()
	})
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	var st Status
	err := r.do(ctx, func(l *loop) {
		st = Status{Running: l.running, Speed: l.speed, Tick: l.engine.stats.Ticks}
	})
	return st, err
}

func (r *Runner) GetState(ctx context.Context) (StateView, error) {
	var v StateView
	err := r.do(ctx, func(l *loop) { v = l.engine.GetState() })
	return v, err
}

// Step runs exactly one tick regardless of the running flag.
func (r *Runner) Step(ctx context.Context) (TickResult, error) {
	var res TickResult
	err := r.do(ctx, func(l *loop) {
		res = l.engine.Tick()
		if res.IsComplete {
			l.halt()
		}
	})
	return res, err
}

func (r *Runner) Route(ctx context.Context, a game.Action) (game.ActionResult, error) {
	var res game.ActionResult
	err := r.do(ctx, func(l *loop) { res = l.engine.Route(a) })
	return res, err
}

func (r *Runner) CatchUp(ctx context.Context, minutes int) (offline.OfflineResult, error) {
	var res offline.OfflineResult
	var err error
	if doErr := r.do(ctx, func(l *loop) { res, err = l.engine.CatchUp(minutes) }); doErr != nil {
		return res, doErr
	}
	return res, err
}

func (r *Runner) Bottlenecks(ctx context.Context) ([]ai.Bottleneck, error) {
	var out []ai.Bottleneck
	err := r.do(ctx, func(l *loop) { out = l.engine.Bottlenecks() })
	return out, err
}

func (r *Runner) RollStatistics(ctx context.Context) (rolls.Statistics, error) {
	var st rolls.Statistics
	err := r.do(ctx, func(l *loop) { st = l.engine.RollStatistics() })
	return st, err
}

func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.do(ctx, func(l *loop) { snap = l.engine.Snapshot() })
	return snap, err
}

func (r *Runner) Restore(ctx context.Context, snap Snapshot) error {
	var err error
	if doErr := r.do(ctx, func(l *loop) {
		l.halt()
		err = l.engine.Restore(snap)
	}); doErr != nil {
		return doErr
	}
	return err
}
