package game

type ActionType string

const (
	ActionPlant        ActionType = "plant"
	ActionHarvest      ActionType = "harvest"
	ActionWater        ActionType = "water"
	ActionPump         ActionType = "pump"
	ActionCleanup      ActionType = "cleanup"
	ActionCatchSeeds   ActionType = "catch_seeds"
	ActionPurchase     ActionType = "purchase"
	ActionBuild        ActionType = "build"
	ActionSellMaterial ActionType = "sell_material"
	ActionTrain        ActionType = "train"
	ActionAdventure    ActionType = "adventure"
	ActionMine         ActionType = "mine"
	ActionCraft        ActionType = "craft"
	ActionStoke        ActionType = "stoke"
	ActionAssignRole   ActionType = "assign_role"
	ActionTrainHelper  ActionType = "train_helper"
	ActionRescue       ActionType = "rescue"
	ActionMove         ActionType = "move"
	ActionWait         ActionType = "wait"
)

func AllActionTypes() []ActionType {
	return []ActionType{
		ActionPlant,
		ActionHarvest,
		ActionWater,
		ActionPump,
		ActionCleanup,
		ActionCatchSeeds,
		ActionPurchase,
		ActionBuild,
		ActionSellMaterial,
		ActionTrain,
		ActionAdventure,
		ActionMine,
		ActionCraft,
		ActionStoke,
		ActionAssignRole,
		ActionTrainHelper,
		ActionRescue,
		ActionMove,
		ActionWait,
	}
}

// Action is an intent. It is passed by value and never modified after creation.
type Action struct {
	Type        ActionType `json:"type"`
	Target      string     `json:"target,omitempty"`
	Duration    int        `json:"duration,omitempty"`
	Description string     `json:"description,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
	Variant     string     `json:"variant,omitempty"`
	Role        HelperRole `json:"role,omitempty"`
}

type DomainEvent struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	OccurredAt  int            `json:"occurred_at"`
}

// ActionResult is the uniform outcome of a dispatch. A failed result carries
// an error message and no state changes.
type ActionResult struct {
	Success      bool           `json:"success"`
	Events       []DomainEvent  `json:"events"`
	StateChanges map[string]any `json:"state_changes"`
	Error        string         `json:"error,omitempty"`
}

func Succeeded(events []DomainEvent, changes map[string]any) ActionResult {
	if events == nil {
		events = []DomainEvent{}
	}
	if changes == nil {
		changes = map[string]any{}
	}
	return ActionResult{Success: true, Events: events, StateChanges: changes}
}

func Failed(msg string) ActionResult {
	if msg == "" {
		msg = "action failed"
	}
	return ActionResult{
		Success:      false,
		Events:       []DomainEvent{},
		StateChanges: map[string]any{},
		Error:        msg,
	}
}
