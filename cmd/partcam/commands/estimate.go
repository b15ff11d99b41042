package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/export"
)

func newEstimateCommand() *cobra.Command {
	var (
		projectPath string
		sheetCost   float64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate material purchase, cost and edge banding",
		Long: `Nest the project and report what to buy: sheets per material with
utilization, the purchase recommendation including a waste factor,
estimated cost, edge banding footage and reusable offcuts.`,
		Example: `  # Estimate using prices from the project's stock sheets
  partcam estimate -p job.json

  # Estimate at a quoted price per sheet
  partcam estimate -p job.json --sheet-cost 42.50`,
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
			warnUnknownMachine(pl, proj)

			groups, report, err := pl.Nest(cmd.Context(), proj)
			if err != nil {
				printReport(report)
				return err
			}

			bom := export.BuildBOM(proj, groups, sheetCost)
			if jsonOutput {
				return printJSON(bom)
			}

			fmt.Printf("Project: %s\n\n", bom.Project)
			for _, m := range bom.Materials {
				fmt.Printf("%s %.1fmm: %d sheets, %d parts, %.1f%% utilization\n",
					m.Material, m.Thickness, m.SheetCount, m.PartsPlaced, m.Utilization)
			}

			p := bom.Purchase
			fmt.Printf("\nPurchase: buy %d sheets (%.1f needed, +%.0f%% waste)\n",
				p.SheetsWithWaste, p.SheetsNeededExact, p.WastePercent)
			if p.EstimatedCost > 0 {
				fmt.Printf("Cost:     %.2f at %.2f per sheet\n", p.EstimatedCost, p.PricePerSheet)
			}

			eb := bom.EdgeBanding
			if eb.EdgeCount > 0 {
				fmt.Printf("Banding:  %.1f m over %d edges (+%.0f%% waste: %.1f m)\n",
					eb.TotalLinear/1000, eb.EdgeCount, eb.WastePercent, eb.TotalWithWaste/1000)
			}

			if len(bom.Offcuts) > 0 {
				fmt.Printf("\nReusable offcuts:\n")
				for _, oc := range bom.Offcuts {
					fmt.Printf("  %s sheet %d: %.0f x %.0f mm\n",
						oc.Material, oc.SheetIndex+1, oc.Width, oc.Height)
				}
			}
			for _, up := range bom.Unplaced {
				fmt.Printf("\nunplaced: %s (%.0f x %.0f %s)\n", up.Label, up.Width, up.Height, up.Material)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file")
	cmd.Flags().Float64Var(&sheetCost, "sheet-cost", 0, "price per sheet (falls back to stock prices)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
