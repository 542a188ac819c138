package rolls

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"timeherosim/internal/domain/game"
)

func TestCache_GetRollIsIdempotentUntilCleared(t *testing.T) {
	c := NewCache(game.DefaultGameData(), Config{}, nil)

	first := c.GetRoll("meadow_path", game.VariantShort)
	second := c.GetRoll("meadow_path", game.VariantShort)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated roll differs (-first +second):\n%s", diff)
	}
	if first.EnemyCount < 3 || first.EnemyCount > 5 || len(first.Enemies) != first.EnemyCount {
		t.Fatalf("short route enemy count out of range: %d", first.EnemyCount)
	}
	if !c.HasActiveRoll("meadow_path", game.VariantShort) {
		t.Fatalf("expected active roll")
	}

	if !c.ClearRoll("meadow_path", game.VariantShort, "complete") {
		t.Fatalf("expected clear to report removal")
	}
	if c.HasActiveRoll("meadow_path", game.VariantShort) {
		t.Fatalf("expected no active roll after clear")
	}
	if c.ClearRoll("meadow_path", game.VariantShort, "complete") {
		t.Fatalf("second clear should be a no-op")
	}

	again := c.GetRoll("meadow_path", game.VariantShort)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("re-roll after clear should reproduce the seed (-first +again):\n%s", diff)
	}
}

func TestCache_ReturnedRollIsACopy(t *testing.T) {
	c := NewCache(game.DefaultGameData(), Config{}, nil)
	r := c.GetRoll("pine_vale", game.VariantLong)
	r.Enemies[0].Power = 1000
	if got := c.GetRoll("pine_vale", game.VariantLong).Enemies[0].Power; got == 1000 {
		t.Fatalf("cache leaked internal slice")
	}
}

func TestCache_VariantsAndRoutesDiffer(t *testing.T) {
	if Seed("meadow_path", game.VariantShort) == Seed("meadow_path", game.VariantLong) {
		t.Fatalf("variants should not share a seed")
	}
	if Seed("meadow_path", game.VariantShort) == Seed("pine_vale", game.VariantShort) {
		t.Fatalf("routes should not share a seed")
	}
	long := Generate(game.DefaultGameData(), "dark_forest", game.VariantLong)
	if long.EnemyCount < 10 || long.EnemyCount > 14 {
		t.Fatalf("long route enemy count out of range: %d", long.EnemyCount)
	}
	for _, e := range long.Enemies {
		if e.Power < 4+2 || e.Power > 12+2 {
			t.Fatalf("enemy power out of range: %+v", e)
		}
	}
}

func TestCache_TTLEvictsIdleEntries(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewCache(game.DefaultGameData(), Config{TTL: time.Minute, Now: func() time.Time { return now }}, nil)

	c.GetRoll("meadow_path", game.VariantShort)
	c.GetRoll("meadow_path", game.VariantMedium)
	now = now.Add(30 * time.Second)
	c.GetRoll("meadow_path", game.VariantShort)
	now = now.Add(45 * time.Second)

	if c.HasActiveRoll("meadow_path", game.VariantMedium) {
		t.Fatalf("medium roll should have expired")
	}
	if n := c.Sweep(); n != 1 {
		t.Fatalf("sweep mismatch: got=%d want=1", n)
	}
	stats := c.Statistics()
	if stats.TotalActiveRolls != 1 || stats.Expired != 1 || stats.Hits != 1 || stats.Generated != 2 {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}

func TestCache_StatisticsSkipUnsweptExpiredRolls(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewCache(game.DefaultGameData(), Config{TTL: time.Minute, Now: func() time.Time { return now }}, nil)

	c.GetRoll("meadow_path", game.VariantShort)
	now = now.Add(40 * time.Second)
	c.GetRoll("meadow_path", game.VariantLong)
	now = now.Add(30 * time.Second)

	stats := c.Statistics()
	if stats.TotalActiveRolls != 1 {
		t.Fatalf("active rolls mismatch: got=%d want=1", stats.TotalActiveRolls)
	}
	if stats.ByVariant[game.VariantShort] != 0 || stats.ByVariant[game.VariantLong] != 1 {
		t.Fatalf("variant counts mismatch: %v", stats.ByVariant)
	}
	if stats.Expired != 0 {
		t.Fatalf("statistics must not sweep: expired=%d", stats.Expired)
	}
}

func TestCache_ExportRestoreRoundTrip(t *testing.T) {
	data := game.DefaultGameData()
	c := NewCache(data, Config{}, nil)
	c.GetRoll("pine_vale", game.VariantShort)
	c.GetRoll("meadow_path", game.VariantMedium)
	c.ClearRoll("missing", game.VariantShort, "abandoned")

	exported := c.Export()
	if len(exported) != 2 || exported[0].RouteID != "meadow_path" {
		t.Fatalf("export order mismatch: %+v", exported)
	}

	restored := NewCache(data, Config{}, nil)
	restored.Restore(exported)
	if diff := cmp.Diff(exported, restored.Export()); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
	if stats := c.Statistics(); stats.ClearedByReason["abandoned"] != 0 {
		t.Fatalf("clearing a missing roll must not count: %+v", stats)
	}
}
