package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/partcam/internal/model"
)

// Scenario is a named nesting configuration to compare.
type Scenario struct {
	Name   string
	Config model.NestingConfig
}

// ScenarioResult holds the nesting outcome and summary statistics for one
// scenario.
type ScenarioResult struct {
	Scenario      Scenario
	Groups        []model.MaterialGroupResult
	SheetsUsed    int
	PartsPlaced   int
	UnplacedCount int
	WastePercent  float64
}

// CompareScenarios nests the same parts under each scenario and returns the
// results in scenario order, enabling side-by-side what-if comparison of
// strategies, kerf widths and margins.
func CompareScenarios(ctx context.Context, scenarios []Scenario, parts []model.Part, stocks []model.StockSheet) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))

	for _, sc := range scenarios {
		groups, err := New(sc.Config).NestAll(ctx, parts, stocks)
		if err != nil {
			return nil, err
		}

		var sheets, placed, unplaced int
		var usedArea, totalArea float64
		for _, g := range groups {
			sheets += g.Result.SheetCount()
			unplaced += len(g.Result.Unplaced)
			for _, s := range g.Result.Sheets {
				placed += len(s.Placements)
				usedArea += s.UsedArea()
				totalArea += s.TotalArea()
			}
		}

		waste := 0.0
		if totalArea > 0 {
			waste = 100.0 - (usedArea/totalArea)*100.0
		}

		results = append(results, ScenarioResult{
			Scenario:      sc,
			Groups:        groups,
			SheetsUsed:    sheets,
			PartsPlaced:   placed,
			UnplacedCount: unplaced,
			WastePercent:  waste,
		})
	}

	return results, nil
}

// BuildDefaultScenarios derives a set of what-if scenarios from the current
// configuration by varying key parameters one at a time.
func BuildDefaultScenarios(base model.NestingConfig) []Scenario {
	scenarios := []Scenario{
		{Name: "Current Settings", Config: base},
	}

	alt := base
	if base.Strategy == model.StrategyGenetic {
		alt.Strategy = model.StrategyGuillotine
		scenarios = append(scenarios, Scenario{Name: "Guillotine Strategy", Config: alt})
	} else {
		alt.Strategy = model.StrategyGenetic
		scenarios = append(scenarios, Scenario{Name: "Genetic Strategy", Config: alt})
	}

	if base.Kerf > 1.0 {
		tight := base
		tight.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Kerf %.2f (half)", tight.Kerf),
			Config: tight,
		})
	}

	if base.EdgeMargin > 0 {
		noMargin := base
		noMargin.EdgeMargin = 0
		scenarios = append(scenarios, Scenario{Name: "No Edge Margin", Config: noMargin})
	}

	return scenarios
}
