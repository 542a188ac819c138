package game

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryCrop     Category = "crop"
	CategoryUpgrade  Category = "upgrade"
	CategoryBuilding Category = "building"
	CategoryCleanup  Category = "cleanup"
	CategoryTool     Category = "tool"
	CategoryWeapon   Category = "weapon"
	CategoryArmor    Category = "armor"
	CategoryRoute    Category = "route"
	CategoryHelper   Category = "helper"
	CategoryMaterial Category = "material"
)

// ItemRecord is one row of game data. Prerequisites name other item ids or
// milestones that must be satisfied first.
type ItemRecord struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	Category      Category           `json:"category" yaml:"category"`
	GoldCost      int                `json:"gold_cost,omitempty" yaml:"gold_cost,omitempty"`
	EnergyCost    int                `json:"energy_cost,omitempty" yaml:"energy_cost,omitempty"`
	MaterialCosts map[string]int     `json:"material_costs,omitempty" yaml:"material_costs,omitempty"`
	Prerequisites []string           `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Duration      int                `json:"duration,omitempty" yaml:"duration,omitempty"`
	Yield         int                `json:"yield,omitempty" yaml:"yield,omitempty"`
	Value         int                `json:"value,omitempty" yaml:"value,omitempty"`
	Level         int                `json:"level,omitempty" yaml:"level,omitempty"`
	Attributes    map[string]float64 `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func (r ItemRecord) Attr(key string) float64 {
	return r.Attributes[key]
}

type GameData struct {
	Items []ItemRecord
	index map[string]int
}

func NewGameData(items []ItemRecord) (*GameData, error) {
	d := &GameData{Items: make([]ItemRecord, 0, len(items)), index: make(map[string]int, len(items))}
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidGameData, i)
		}
		if _, dup := d.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidGameData, id)
		}
		item.ID = id
		d.index[id] = len(d.Items)
		d.Items = append(d.Items, item)
	}
	return d, nil
}

func (d *GameData) Item(id string) (ItemRecord, bool) {
	if d == nil {
		return ItemRecord{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return ItemRecord{}, false
	}
	return d.Items[i], true
}

func (d *GameData) ByCategory(c Category) []ItemRecord {
	if d == nil {
		return nil
	}
	out := make([]ItemRecord, 0)
	for _, item := range d.Items {
		if item.Category == c {
			out = append(out, item)
		}
	}
	return out
}

func (d *GameData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}
