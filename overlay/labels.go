package overlay

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Town is one label candidate, typically exported from a geodata query
// beforehand. Class is one of the town label classes; unknown classes are
// rendered as plain towns.
type Town struct {
	Name       string  `json:"name"`
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	Population int64   `json:"population"`
	Class      string  `json:"class"`
}

// LoadTowns reads town label candidates from a JSON array.
func LoadTowns(path string) ([]Town, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read towns: %w", err)
	}

	var towns []Town
	if err := json.Unmarshal(data, &towns); err != nil {
		return nil, fmt.Errorf("parse towns %s: %w", path, err)
	}
	return towns, nil
}

// DrawTownLabels places town labels class by class, most important first,
// and within a class by population, so collision handling drops the least
// significant labels.
func DrawTownLabels(c *Canvas, towns []Town) {
	byClass := map[string][]Town{}
	for _, town := range towns {
		class := town.Class
		switch class {
		case TownCapital, TownCity, TownTown:
		default:
			class = TownTown
		}
		byClass[class] = append(byClass[class], town)
	}

	for _, class := range []string{TownCapital, TownCity, TownTown} {
		group := byClass[class]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Population > group[j].Population
		})

		for _, town := range group {
			town.Class = class
			c.TownLabel(town)
		}
	}
}
