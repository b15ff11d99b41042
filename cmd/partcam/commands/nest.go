package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/engine"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/validate"
)

func newNestCommand() *cobra.Command {
	var (
		projectPath string
		strategy    string
		compare     bool
	)

	cmd := &cobra.Command{
		Use:   "nest",
		Short: "Nest project parts onto stock sheets",
		Long: `Nest the project's parts onto stock sheets, one nesting run per
material and thickness group. Parts come from project stock sheets
where available, otherwise from the default sheet size in the nesting
configuration.`,
		Example: `  # Nest with the project's configured strategy
  partcam nest -p job.json

  # Force the genetic strategy for this run
  partcam nest -p job.json --strategy genetic

  # Compare strategy and rotation scenarios side by side
  partcam nest -p job.json --compare`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := buildPipeline()
			if err != nil {
				return err
			}
			proj, err := loadProject(projectPath)
			if err != nil {
				return err
			}
			if strategy != "" {
				if strategy != model.StrategyGuillotine && strategy != model.StrategyGenetic {
					return fmt.Errorf("unknown strategy %q (want %s or %s)",
						strategy, model.StrategyGuillotine, model.StrategyGenetic)
				}
				proj.Nesting.Strategy = strategy
			}
			warnUnknownMachine(pl, proj)

			if compare {
				return runCompare(cmd.Context(), proj)
			}

			groups, report, err := pl.Nest(cmd.Context(), proj)
			if err != nil {
				printReport(report)
				return err
			}

			if jsonOutput {
				return printJSON(struct {
					Groups []model.MaterialGroupResult `json:"groups"`
					Report validate.Report             `json:"report"`
				}{groups, report})
			}
			printWarnings(report)
			printGroups(groups)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file")
	cmd.Flags().StringVar(&strategy, "strategy", "", "nesting strategy override (guillotine or genetic)")
	cmd.Flags().BoolVar(&compare, "compare", false, "compare nesting scenarios instead of nesting once")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runCompare(ctx context.Context, proj model.Project) error {
	scenarios := engine.BuildDefaultScenarios(proj.Nesting)
	results, err := engine.CompareScenarios(ctx, scenarios, proj.Parts, proj.Stocks)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(results)
	}

	fmt.Printf("%-32s %7s %7s %9s %7s\n", "Scenario", "Sheets", "Placed", "Unplaced", "Waste")
	for _, r := range results {
		fmt.Printf("%-32s %7d %7d %9d %6.1f%%\n",
			r.Scenario.Name, r.SheetsUsed, r.PartsPlaced, r.UnplacedCount, r.WastePercent)
	}
	return nil
}

func printGroups(groups []model.MaterialGroupResult) {
	for _, g := range groups {
		r := g.Result
		fmt.Printf("%s %.1fmm: %d sheets, %.1f%% utilization\n",
			g.Material, g.Thickness, r.SheetCount(), r.OverallUtilization())
		for _, sheet := range r.Sheets {
			fmt.Printf("  sheet %d: %d parts, %.1f%% used\n",
				sheet.Index+1, len(sheet.Placements), sheet.Utilization())
		}
		for _, part := range r.Unplaced {
			fmt.Printf("  unplaced: %s (%.0f x %.0f)\n", part.Label, part.Width, part.Height)
		}
	}
}
