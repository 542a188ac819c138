package game

import (
	"encoding/json"
	"math"
	"sort"
)

// Pool is a bounded resource. Max <= 0 means uncapped.
type Pool struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
	Regen   float64 `json:"regen_per_minute"`
}

// adjust is the only place a pool value changes. Returns the applied delta.
func (p *Pool) adjust(delta float64) float64 {
	next := p.Current + delta
	if next < 0 {
		next = 0
	}
	if p.Max > 0 && next > p.Max {
		next = p.Max
	}
	applied := next - p.Current
	p.Current = next
	return applied
}

func (p *Pool) Add(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return p.adjust(amount)
}

// Drain removes up to amount and returns what was actually removed.
func (p *Pool) Drain(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return -p.adjust(-amount)
}

// Spend removes amount only if the pool holds all of it.
func (p *Pool) Spend(amount float64) bool {
	if amount < 0 || p.Current < amount {
		return false
	}
	p.adjust(-amount)
	return true
}

func (p Pool) Has(amount float64) bool {
	return p.Current >= amount
}

func (p Pool) Headroom() float64 {
	if p.Max <= 0 {
		return math.Inf(1)
	}
	if p.Current >= p.Max {
		return 0
	}
	return p.Max - p.Current
}

func (p *Pool) Regenerate(minutes float64) float64 {
	if p.Regen <= 0 || minutes <= 0 {
		return 0
	}
	return p.Add(p.Regen * minutes)
}

// Counter maps an item id to a non-negative count.
type Counter map[string]int

func (c *Counter) adjust(id string, delta int) int {
	if id == "" || delta == 0 {
		return 0
	}
	if *c == nil {
		*c = Counter{}
	}
	cur := (*c)[id]
	next := cur + delta
	if next < 0 {
		next = 0
	}
	if next == 0 {
		delete(*c, id)
	} else {
		(*c)[id] = next
	}
	return next - cur
}

func (c *Counter) Add(id string, n int) int {
	if n <= 0 {
		return 0
	}
	return c.adjust(id, n)
}

// Drain removes up to n and returns how many were removed.
func (c *Counter) Drain(id string, n int) int {
	if n <= 0 {
		return 0
	}
	return -c.adjust(id, -n)
}

// Take removes n only if at least n are held.
func (c *Counter) Take(id string, n int) bool {
	if n <= 0 || c.Count(id) < n {
		return false
	}
	c.adjust(id, -n)
	return true
}

func (c Counter) Count(id string) int {
	return c[id]
}

func (c Counter) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func (c Counter) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dominant returns the id with the highest count, ties broken by id.
func (c Counter) Dominant() (string, int) {
	best, bestN := "", 0
	for _, k := range c.Keys() {
		if c[k] > bestN {
			best, bestN = k, c[k]
		}
	}
	return best, bestN
}

func (c Counter) Clone() Counter {
	out := make(Counter, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Set is an unordered collection of ids. It encodes as a sorted JSON array.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s *Set) Add(id string) bool {
	if id == "" {
		return false
	}
	if *s == nil {
		*s = Set{}
	}
	if _, ok := (*s)[id]; ok {
		return false
	}
	(*s)[id] = struct{}{}
	return true
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Remove(id string) {
	delete(s, id)
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
