package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timeherosim/internal/app/ai"
	"timeherosim/internal/domain/game"
)

var (
	ErrInvalidConfig  = errors.New("invalid simulation config")
	ErrNotInitialized = errors.New("simulation not initialized")
	ErrCompleted      = errors.New("simulation already completed")
)

const (
	DefaultMaxDays    = 30
	DefaultStuckTicks = 288
	DefaultInterval   = 100 * time.Millisecond
)

// DefaultVictoryMilestone is reached by clearing the last route.
var DefaultVictoryMilestone = game.MilestoneForRoute("dark_forest")

type Config struct {
	RunID       string
	Persona     string
	TickMinutes int
	// MaxDays bounds the run; the day after it ends the simulation.
	MaxDays int
	// StuckTicks ends the run after this many ticks without progress.
	StuckTicks int
	Victory    []string
	Thresholds ai.Thresholds
	RollTTL    time.Duration
	Data       *game.GameData
	// Initial replaces the default starting state when set.
	Initial *game.GameState
	Logger  *slog.Logger
	Now     func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Persona:     ai.PersonaCasual,
		TickMinutes: game.DefaultTickMinutes,
		MaxDays:     DefaultMaxDays,
		StuckTicks:  DefaultStuckTicks,
		Victory:     []string{DefaultVictoryMilestone},
		Thresholds:  ai.DefaultThresholds(),
		RollTTL:     time.Hour,
		Data:        game.DefaultGameData(),
	}
}

// Validate reports the first problem found, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Persona == "":
		return fmt.Errorf("%w: persona is required", ErrInvalidConfig)
	case c.TickMinutes <= 0:
		return fmt.Errorf("%w: tick minutes must be positive, got %d", ErrInvalidConfig, c.TickMinutes)
	case c.MaxDays <= 0:
		return fmt.Errorf("%w: max days must be positive, got %d", ErrInvalidConfig, c.MaxDays)
	case c.StuckTicks <= 0:
		return fmt.Errorf("%w: stuck ticks must be positive, got %d", ErrInvalidConfig, c.StuckTicks)
	case c.Data == nil || c.Data.Len() == 0:
		return fmt.Errorf("%w: game data is empty", ErrInvalidConfig)
	case c.Thresholds.MinSeverity < 0 || c.Thresholds.MinSeverity > 1:
		return fmt.Errorf("%w: min severity must be within [0,1], got %g", ErrInvalidConfig, c.Thresholds.MinSeverity)
	}
	for _, id := range c.Victory {
		if id == "" {
			return fmt.Errorf("%w: empty victory milestone", ErrInvalidConfig)
		}
	}
	return nil
}
