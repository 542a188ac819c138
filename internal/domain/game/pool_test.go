package game

import (
	"encoding/json"
	"testing"
)

func TestPool_ClampsAtZeroAndMax(t *testing.T) {
	p := Pool{Current: 10, Max: 20}
	if got := p.Add(15); got != 10 {
		t.Fatalf("applied add mismatch: got=%v want=10", got)
	}
	if p.Current != 20 {
		t.Fatalf("current after add: got=%v want=20", p.Current)
	}
	if got := p.Drain(50); got != 20 {
		t.Fatalf("drained mismatch: got=%v want=20", got)
	}
	if p.Current != 0 {
		t.Fatalf("expected pool clamped at zero, got=%v", p.Current)
	}
}

func TestPool_SpendIsAllOrNothing(t *testing.T) {
	p := Pool{Current: 3}
	if p.Spend(5) {
		t.Fatalf("expected spend beyond balance to fail")
	}
	if p.Current != 3 {
		t.Fatalf("failed spend must not change pool, got=%v", p.Current)
	}
	if !p.Spend(3) || p.Current != 0 {
		t.Fatalf("expected exact spend to succeed, current=%v", p.Current)
	}
}

func TestPool_UncappedHeadroom(t *testing.T) {
	p := Pool{Current: 1e6}
	if got := p.Add(10); got != 10 {
		t.Fatalf("uncapped pool should accept all, got=%v", got)
	}
	if h := p.Headroom(); h < 1e12 {
		t.Fatalf("expected infinite headroom, got=%v", h)
	}
}

func TestCounter_NeverNegative(t *testing.T) {
	var c Counter
	c.Add("carrot", 2)
	if got := c.Drain("carrot", 5); got != 2 {
		t.Fatalf("drain mismatch: got=%d want=2", got)
	}
	if got := c.Count("carrot"); got != 0 {
		t.Fatalf("count after drain: got=%d want=0", got)
	}
	if c.Take("carrot", 1) {
		t.Fatalf("expected take on empty counter to fail")
	}
	if _, ok := c["carrot"]; ok {
		t.Fatalf("expected zero entries removed")
	}
}

func TestCounter_Dominant(t *testing.T) {
	c := Counter{"radish": 4, "carrot": 4, "potato": 1}
	id, n := c.Dominant()
	if id != "carrot" || n != 4 {
		t.Fatalf("dominant mismatch: got=%s/%d want=carrot/4", id, n)
	}
}

func TestSet_RoundTripsAsSortedArray(t *testing.T) {
	s := NewSet("b", "a")
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(b), `["a","b"]`; got != want {
		t.Fatalf("encoding mismatch: got=%s want=%s", got, want)
	}
	var back Set
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || !back.Has("a") || !back.Has("b") {
		t.Fatalf("unexpected decoded set: %v", back.Sorted())
	}
}
