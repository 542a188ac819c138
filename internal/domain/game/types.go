package game

type GameState struct {
	Time        TimeState      `json:"time"`
	Resources   Resources      `json:"resources"`
	Progression Progression    `json:"progression"`
	Inventory   Inventory      `json:"inventory"`
	Farm        FarmState      `json:"farm"`
	Forge       ForgeState     `json:"forge"`
	Mine        MineState      `json:"mine"`
	Adventure   AdventureState `json:"adventure"`
	Helpers     []Helper       `json:"helpers"`
	Location    Location       `json:"location"`
}

type TimeState struct {
	Day          int     `json:"day"`
	Hour         int     `json:"hour"`
	Minute       int     `json:"minute"`
	TotalMinutes int     `json:"total_minutes"`
	Speed        float64 `json:"speed"`
}

type Resources struct {
	Energy    Pool    `json:"energy"`
	Gold      Pool    `json:"gold"`
	Water     Pool    `json:"water"`
	Seeds     Counter `json:"seeds"`
	Materials Counter `json:"materials"`
}

type Progression struct {
	HeroLevel           int    `json:"hero_level"`
	Experience          int    `json:"experience"`
	UnlockedUpgrades    Set    `json:"unlocked_upgrades"`
	CompletedMilestones Set    `json:"completed_milestones"`
	CurrentPhase        string `json:"current_phase"`
}

type ItemInstance struct {
	ID         string `json:"id"`
	Durability int    `json:"durability"`
	Level      int    `json:"level"`
}

type Inventory struct {
	Tools   map[string]ItemInstance `json:"tools"`
	Weapons map[string]ItemInstance `json:"weapons"`
	Armor   map[string]ItemInstance `json:"armor"`
}

type Plot struct {
	Index      int     `json:"index"`
	Unlocked   bool    `json:"unlocked"`
	Crop       string  `json:"crop,omitempty"`
	ProcessID  string  `json:"process_id,omitempty"`
	Ready      bool    `json:"ready"`
	Withered   bool    `json:"withered"`
	WaterLevel float64 `json:"water_level"`
}

// Empty reports whether a new crop can be planted on the plot.
func (p Plot) Empty() bool {
	return p.Crop == "" && p.ProcessID == "" && !p.Ready && !p.Withered
}

type FarmState struct {
	Plots []Plot `json:"plots"`
}

type ForgeState struct {
	Heat  float64 `json:"heat"`
	Slots int     `json:"slots"`
}

type MineState struct {
	Depth int `json:"depth"`
}

type AdventureState struct {
	ActiveRoute string `json:"active_route,omitempty"`
	Variant     string `json:"variant,omitempty"`
	Victories   int    `json:"victories"`
	Defeats     int    `json:"defeats"`
}

type HelperRole string

const (
	RoleIdle      HelperRole = "idle"
	RoleWaterer   HelperRole = "waterer"
	RoleHarvester HelperRole = "harvester"
	RolePumper    HelperRole = "pumper"
	RoleMiner     HelperRole = "miner"
)

func IsHelperRole(r HelperRole) bool {
	switch r {
	case RoleIdle, RoleWaterer, RoleHarvester, RolePumper, RoleMiner:
		return true
	}
	return false
}

type Helper struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       HelperRole `json:"role"`
	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	Progress   float64    `json:"progress,omitempty"`
}

type Location struct {
	CurrentScreen  string   `json:"current_screen"`
	PreviousScreen string   `json:"previous_screen,omitempty"`
	TimeOnScreen   int      `json:"time_on_screen"`
	ScreenHistory  []string `json:"screen_history"`
}

const (
	ScreenFarm      = "farm"
	ScreenTower     = "tower"
	ScreenTown      = "town"
	ScreenAdventure = "adventure"
	ScreenForge     = "forge"
	ScreenMine      = "mine"
)

const (
	PhaseEarly = "early"
	PhaseMid   = "mid"
	PhaseLate  = "late"
)
