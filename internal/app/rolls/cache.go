package rolls

import (
	"hash/fnv"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"timeherosim/internal/domain/game"
)

var enemyTypes = []string{"slime", "goblin", "wolf", "bandit", "wraith"}

type Config struct {
	// TTL evicts idle entries. Zero keeps entries until cleared.
	TTL time.Duration
	Now func() time.Time
}

type Statistics struct {
	TotalActiveRolls int            `json:"total_active_rolls"`
	Generated        int            `json:"generated"`
	Hits             int            `json:"hits"`
	Expired          int            `json:"expired"`
	ClearedByReason  map[string]int `json:"cleared_by_reason"`
	ByVariant        map[string]int `json:"by_variant"`
}

type key struct {
	route   string
	variant string
}

type entry struct {
	roll     game.RouteRoll
	lastUsed time.Time
}

// Cache generates route rolls on first request and returns the cached roll
// until it is cleared. Seeds derive from the route key alone, so a roll
// generated again after a clear is identical to the previous one.
type Cache struct {
	mu        sync.Mutex
	data      *game.GameData
	ttl       time.Duration
	now       func() time.Time
	log       *slog.Logger
	entries   map[key]*entry
	generated int
	hits      int
	expired   int
	cleared   map[string]int
}

func NewCache(data *game.GameData, cfg Config, logger *slog.Logger) *Cache {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		data:    data,
		ttl:     cfg.TTL,
		now:     cfg.Now,
		log:     logger,
		entries: map[key]*entry{},
		cleared: map[string]int{},
	}
}

// Seed is the FNV-1a hash of "route|variant".
func Seed(routeID, variant string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(routeID + "|" + variant))
	return int64(h.Sum64())
}

// Generate derives the encounter for a key without touching any cache.
func Generate(data *game.GameData, routeID, variant string) game.RouteRoll {
	seed := Seed(routeID, variant)
	rng := rand.New(rand.NewSource(seed))

	span, ok := game.VariantEnemyRange[variant]
	if !ok {
		span = game.VariantEnemyRange[game.VariantShort]
	}
	count := span[0] + rng.Intn(span[1]-span[0]+1)

	base := 1
	if data != nil {
		if rec, ok := data.Item(routeID); ok {
			base = max(int(rec.Attr("enemy_power")), 1)
		}
	}
	enemies := make([]game.Enemy, count)
	for i := range enemies {
		enemies[i] = game.Enemy{
			Type:  enemyTypes[rng.Intn(len(enemyTypes))],
			Power: base*(1+rng.Intn(3)) + game.VariantPowerBonus[variant],
		}
	}
	return game.RouteRoll{
		RouteID:    routeID,
		Variant:    variant,
		Seed:       seed,
		EnemyCount: count,
		Enemies:    enemies,
		State:      game.RollActive,
	}
}

func (c *Cache) GetRoll(routeID, variant string) game.RouteRoll {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	k := key{routeID, variant}
	if e, ok := c.entries[k]; ok {
		if !c.expiredAt(e, now) {
			e.lastUsed = now
			c.hits++
			return cloneRoll(e.roll)
		}
		delete(c.entries, k)
		c.expired++
	}
	roll := Generate(c.data, routeID, variant)
	c.entries[k] = &entry{roll: roll, lastUsed: now}
	c.generated++
	c.log.Debug("route roll generated", "route", routeID, "variant", variant, "seed", roll.Seed, "enemies", roll.EnemyCount)
	return cloneRoll(roll)
}

func (c *Cache) HasActiveRoll(routeID, variant string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key{routeID, variant}]
	return ok && !c.expiredAt(e, c.now())
}

// ClearRoll drops the cached roll and records why.
func (c *Cache) ClearRoll(routeID, variant, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{routeID, variant}
	if _, ok := c.entries[k]; !ok {
		return false
	}
	delete(c.entries, k)
	if reason == "" {
		reason = "unspecified"
	}
	c.cleared[reason]++
	c.log.Debug("route roll cleared", "route", routeID, "variant", variant, "reason", reason)
	return true
}

// Sweep evicts every entry idle longer than the TTL.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if c.expiredAt(e, now) {
			delete(c.entries, k)
			n++
		}
	}
	c.expired += n
	return n
}

func (c *Cache) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := Statistics{
		Generated:        c.generated,
		Hits:             c.hits,
		Expired:          c.expired,
		ClearedByReason:  make(map[string]int, len(c.cleared)),
		ByVariant:        map[string]int{},
	}
	for k, v := range c.cleared {
		out.ClearedByReason[k] = v
	}
	now := c.now()
	for k, e := range c.entries {
		if c.expiredAt(e, now) {
			continue
		}
		out.TotalActiveRolls++
		out.ByVariant[k.variant]++
	}
	return out
}

// Export lists the cached rolls ordered by route then variant.
func (c *Cache) Export() []game.RouteRoll {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]game.RouteRoll, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, cloneRoll(e.roll))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RouteID != out[j].RouteID {
			return out[i].RouteID < out[j].RouteID
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}

// Restore replaces the cache content with persisted rolls.
func (c *Cache) Restore(rolls []game.RouteRoll) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries = make(map[key]*entry, len(rolls))
	for _, r := range rolls {
		if r.State == game.RollCleared {
			continue
		}
		c.entries[key{r.RouteID, r.Variant}] = &entry{roll: cloneRoll(r), lastUsed: now}
	}
}

func (c *Cache) expiredAt(e *entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.lastUsed) > c.ttl
}

func cloneRoll(r game.RouteRoll) game.RouteRoll {
	r.Enemies = append([]game.Enemy(nil), r.Enemies...)
	return r
}
