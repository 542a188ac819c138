// Package config loads server settings from an optional YAML file and
// TIMEHERO_* environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timeherosim/internal/app/ai"
	"timeherosim/internal/app/sim"
	"timeherosim/internal/domain/game"
)

var ErrInvalid = errors.New("invalid config")

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HTTP       HTTP       `yaml:"http"`
	Storage    Storage    `yaml:"storage"`
	Simulation Simulation `yaml:"simulation"`
	GameData   string     `yaml:"game_data"`
	LogLevel   string     `yaml:"log_level"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
	// WSAddr serves the tick stream; empty disables it.
	WSAddr string `yaml:"ws_addr"`
}

type Storage struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	SQLitePath  string `yaml:"sqlite_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
	Migrations  string `yaml:"migrations"`
}

type Simulation struct {
	Persona        string     `yaml:"persona" json:"persona"`
	TickMinutes    int        `yaml:"tick_minutes" json:"tick_minutes"`
	MaxDays        int        `yaml:"max_days" json:"max_days"`
	StuckTicks     int        `yaml:"stuck_ticks" json:"stuck_ticks"`
	IntervalMs     int        `yaml:"interval_ms" json:"interval_ms"`
	Speed          float64    `yaml:"speed" json:"speed"`
	RollTTLMinutes int        `yaml:"roll_ttl_minutes" json:"roll_ttl_minutes"`
	Victory        []string   `yaml:"victory" json:"victory"`
	AutoStart      bool       `yaml:"auto_start" json:"auto_start"`
	Resume         bool       `yaml:"resume" json:"resume"`
	Thresholds     Thresholds `yaml:"thresholds" json:"thresholds"`
}

type Thresholds struct {
	MinSeverity  float64 `yaml:"min_severity" json:"min_severity"`
	WaterPerPlot float64 `yaml:"water_per_plot" json:"water_per_plot"`
}

func Default() Config {
	d := sim.DefaultConfig()
	return Config{
		HTTP:    HTTP{Addr: ":8080", WSAddr: ":8081"},
		Storage: Storage{Driver: StoreMemory, SQLitePath: "timehero.db"},
		Simulation: Simulation{
			Persona:        d.Persona,
			TickMinutes:    d.TickMinutes,
			MaxDays:        d.MaxDays,
			StuckTicks:     d.StuckTicks,
			IntervalMs:     int(sim.DefaultInterval / time.Millisecond),
			Speed:          1,
			RollTTLMinutes: int(d.RollTTL / time.Minute),
			Victory:        d.Victory,
			Thresholds: Thresholds{
				MinSeverity:  d.Thresholds.MinSeverity,
				WaterPerPlot: d.Thresholds.WaterPerPlot,
			},
		},
		LogLevel: "info",
	}
}

// Load reads path when it is not empty, applies env overrides and checks the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Addr = stringEnv("TIMEHERO_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.WSAddr = stringEnv("TIMEHERO_WS_ADDR", cfg.HTTP.WSAddr)
	cfg.Storage.Driver = stringEnv("TIMEHERO_STORE", cfg.Storage.Driver)
	cfg.Storage.DSN = stringEnv("TIMEHERO_DB_DSN", cfg.Storage.DSN)
	cfg.Storage.SQLitePath = stringEnv("TIMEHERO_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.SnapshotDir = stringEnv("TIMEHERO_SNAPSHOT_DIR", cfg.Storage.SnapshotDir)
	cfg.Storage.Migrations = stringEnv("TIMEHERO_MIGRATIONS", cfg.Storage.Migrations)
	cfg.GameData = stringEnv("TIMEHERO_GAMEDATA", cfg.GameData)
	cfg.LogLevel = stringEnv("TIMEHERO_LOG_LEVEL", cfg.LogLevel)

	s := &cfg.Simulation
	s.Persona = stringEnv("TIMEHERO_PERSONA", s.Persona)
	s.TickMinutes = intEnv("TIMEHERO_TICK_MINUTES", s.TickMinutes)
	s.MaxDays = intEnv("TIMEHERO_MAX_DAYS", s.MaxDays)
	s.StuckTicks = intEnv("TIMEHERO_STUCK_TICKS", s.StuckTicks)
	s.IntervalMs = intEnv("TIMEHERO_INTERVAL_MS", s.IntervalMs)
	s.RollTTLMinutes = intEnv("TIMEHERO_ROLL_TTL_MINUTES", s.RollTTLMinutes)
	s.Speed = floatEnv("TIMEHERO_SPEED", s.Speed)
	s.AutoStart = boolEnv("TIMEHERO_AUTO_START", s.AutoStart)
	s.Resume = boolEnv("TIMEHERO_RESUME", s.Resume)
	if v := strings.TrimSpace(os.Getenv("TIMEHERO_VICTORY")); v != "" {
		s.Victory = splitList(v)
	}
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("%w: postgres storage needs a dsn", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalid, c.Storage.Driver)
	}
	if c.Storage.Driver == StoreSQLite && strings.TrimSpace(c.Storage.SQLitePath) == "" {
		return fmt.Errorf("%w: sqlite storage needs a path", ErrInvalid)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return validateSimulation(c.Simulation)
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return lvl, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return lvl, nil
}

// Sim converts the simulation section into an engine config.
func (c Config) Sim(data *game.GameData, logger *slog.Logger) sim.Config {
	s := c.Simulation
	th := ai.DefaultThresholds()
	th.MinSeverity = s.Thresholds.MinSeverity
	th.WaterPerPlot = s.Thresholds.WaterPerPlot
	cfg := sim.DefaultConfig()
	cfg.Persona = s.Persona
	cfg.TickMinutes = s.TickMinutes
	cfg.MaxDays = s.MaxDays
	cfg.StuckTicks = s.StuckTicks
	cfg.Victory = append([]string(nil), s.Victory...)
	cfg.Thresholds = th
	cfg.RollTTL = time.Duration(s.RollTTLMinutes) * time.Minute
	cfg.Data = data
	cfg.Logger = logger
	return cfg
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.Simulation.IntervalMs) * time.Millisecond
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
