// Package gamedata reads item records from YAML files.
package gamedata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"timeherosim/internal/domain/game"
)

type document struct {
	Items []game.ItemRecord `yaml:"items"`
}

var knownCategories = map[game.Category]bool{
	game.CategoryCrop:     true,
	game.CategoryUpgrade:  true,
	game.CategoryBuilding: true,
	game.CategoryCleanup:  true,
	game.CategoryTool:     true,
	game.CategoryWeapon:   true,
	game.CategoryArmor:    true,
	game.CategoryRoute:    true,
	game.CategoryHelper:   true,
	game.CategoryMaterial: true,
}

// Load reads path. An empty path yields the built-in catalog.
func Load(path string) (*game.GameData, error) {
	if strings.TrimSpace(path) == "" {
		return game.DefaultGameData(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func Parse(raw []byte) (*game.GameData, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrInvalidGameData, err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", game.ErrInvalidGameData)
	}
	d, err := game.NewGameData(doc.Items)
	if err != nil {
		return nil, err
	}
	if err := check(d); err != nil {
		return nil, err
	}
	return d, nil
}

// check rejects records the systems cannot interpret.
func check(d *game.GameData) error {
	for _, item := range d.Items {
		if !knownCategories[item.Category] {
			return fmt.Errorf("%w: %s has unknown category %q", game.ErrInvalidGameData, item.ID, item.Category)
		}
		if item.GoldCost < 0 || item.EnergyCost < 0 || item.Duration < 0 {
			return fmt.Errorf("%w: %s has a negative cost or duration", game.ErrInvalidGameData, item.ID)
		}
		for material, n := range item.MaterialCosts {
			if n <= 0 {
				return fmt.Errorf("%w: %s needs %d %s", game.ErrInvalidGameData, item.ID, n, material)
			}
		}
		for _, pre := range item.Prerequisites {
			if route, ok := strings.CutPrefix(pre, "route:"); ok {
				pre = route
			}
			if _, ok := d.Item(pre); !ok {
				return fmt.Errorf("%w: %s requires unknown %q", game.ErrInvalidGameData, item.ID, pre)
			}
		}
	}
	return nil
}

// Marshal renders d in the format Parse reads.
func Marshal(d *game.GameData) ([]byte, error) {
	return yaml.Marshal(document{Items: d.Items})
}
