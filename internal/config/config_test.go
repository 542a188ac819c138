package config

import (
	"errors"
	"testing"
	"time"

	"timeherosim/internal/domain/game"
)

func TestLoad_DefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Storage.Driver != StoreMemory || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("defaults mismatch: got=%+v", cfg)
	}
	if err := cfg.Sim(game.DefaultGameData(), nil).Validate(); err != nil {
		t.Fatalf("default sim config invalid: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("TIMEHERO_TICK_MINUTES", "15")
	t.Setenv("TIMEHERO_VICTORY", "route:meadow_path, route:dark_forest")
	t.Setenv("TIMEHERO_SPEED", "not-a-number")

	cfg, err := Load("testdata/server.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := cfg.Simulation
	if s.Persona != "speedrunner" || s.MaxDays != 14 {
		t.Fatalf("file values mismatch: got=%+v", s)
	}
	if s.TickMinutes != 15 {
		t.Fatalf("env override mismatch: got=%d want=15", s.TickMinutes)
	}
	if s.Speed != 4 {
		t.Fatalf("bad env value should keep file value: got=%f want=4", s.Speed)
	}
	if len(s.Victory) != 2 || s.Victory[1] != "route:dark_forest" {
		t.Fatalf("victory mismatch: got=%v", s.Victory)
	}
	if cfg.Interval() != 20*time.Millisecond {
		t.Fatalf("interval mismatch: got=%v", cfg.Interval())
	}

	simCfg := cfg.Sim(game.DefaultGameData(), nil)
	if simCfg.Thresholds.WaterPerPlot != 6 || simCfg.Thresholds.MinSeverity != 0.2 {
		t.Fatalf("thresholds not carried: got=%+v", simCfg.Thresholds)
	}
	if simCfg.RollTTL != time.Hour {
		t.Fatalf("roll ttl mismatch: got=%v want=1h", simCfg.RollTTL)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"persona":     func(c *Config) { c.Simulation.Persona = "robot" },
		"tick":        func(c *Config) { c.Simulation.TickMinutes = 0 },
		"speed":       func(c *Config) { c.Simulation.Speed = 0 },
		"severity":    func(c *Config) { c.Simulation.Thresholds.MinSeverity = 1.5 },
		"victory":     func(c *Config) { c.Simulation.Victory = []string{""} },
		"driver":      func(c *Config) { c.Storage.Driver = "mongo" },
		"postgres":    func(c *Config) { c.Storage.Driver = StorePostgres },
		"log level":   func(c *Config) { c.LogLevel = "loud" },
		"sqlite path": func(c *Config) { c.Storage.Driver = StoreSQLite; c.Storage.SQLitePath = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got=%v", name, err)
		}
	}
}
