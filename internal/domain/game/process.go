package game

type ProcessKind string

const (
	ProcessCropGrowth ProcessKind = "crop_growth"
	ProcessCrafting   ProcessKind = "crafting"
	ProcessMining     ProcessKind = "mining"
	ProcessAdventure  ProcessKind = "adventure"
)

func (k ProcessKind) Valid() bool {
	switch k {
	case ProcessCropGrowth, ProcessCrafting, ProcessMining, ProcessAdventure:
		return true
	}
	return false
}

// SpeedAttribute is the item attribute that scales this kind's progress rate.
func (k ProcessKind) SpeedAttribute() string {
	switch k {
	case ProcessCropGrowth:
		return "growth_speed"
	case ProcessCrafting:
		return "craft_speed"
	case ProcessMining:
		return "mine_speed"
	case ProcessAdventure:
		return "adventure_speed"
	}
	return ""
}

type Process struct {
	ID        string      `json:"id"`
	Kind      ProcessKind `json:"kind"`
	Ref       string      `json:"ref"`
	StartedAt int         `json:"started_at"`
	Duration  float64     `json:"duration"`
	Progress  float64     `json:"progress"`
	Data      ProcessData `json:"data"`
}

type ProcessData struct {
	Item       string  `json:"item,omitempty"`
	PlotIndex  int     `json:"plot_index,omitempty"`
	DryMinutes float64 `json:"dry_minutes,omitempty"`
	Depth      int     `json:"depth,omitempty"`
	Route      string  `json:"route,omitempty"`
	Variant    string  `json:"variant,omitempty"`
}

// StartRequest carries the kind-specific inputs for starting a process.
type StartRequest struct {
	Item      string `json:"item,omitempty"`
	PlotIndex int    `json:"plot_index,omitempty"`
	Route     string `json:"route,omitempty"`
	Variant   string `json:"variant,omitempty"`
}

func (p Process) Done() bool {
	return p.Progress >= p.Duration
}

// Fraction is progress in [0,1].
func (p Process) Fraction() float64 {
	if p.Duration <= 0 {
		return 1
	}
	f := p.Progress / p.Duration
	if f > 1 {
		return 1
	}
	return f
}

type RollState string

const (
	RollActive  RollState = "active"
	RollCleared RollState = "cleared"
)

type Enemy struct {
	Type  string `json:"type"`
	Power int    `json:"power"`
}

type RouteRoll struct {
	RouteID    string    `json:"route_id"`
	Variant    string    `json:"variant"`
	Seed       int64     `json:"seed"`
	EnemyCount int       `json:"enemy_count"`
	Enemies    []Enemy   `json:"enemies"`
	State      RollState `json:"state"`
}

func (r RouteRoll) TotalPower() int {
	total := 0
	for _, e := range r.Enemies {
		total += e.Power
	}
	return total
}

const (
	VariantShort  = "Short"
	VariantMedium = "Medium"
	VariantLong   = "Long"
)

func IsRouteVariant(v string) bool {
	return v == VariantShort || v == VariantMedium || v == VariantLong
}
