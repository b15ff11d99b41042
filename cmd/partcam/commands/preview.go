package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/pipeline"
)

func newPreviewCommand() *cobra.Command {
	var (
		projectPath string
		sheet       int
		check       bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render one sheet's program in memory and summarize it",
		Long: `Render the program for a single sheet without writing anything to
disk, parse it back into moves and report the cut and rapid distances,
coordinate extents and estimated runtime. Sheets are numbered across
the whole job: material groups in order, sheets in order within each
group.`,
		Example: `  # Summarize the first sheet
  partcam preview -p job.json --sheet 1

  # Also verify the program stays inside the machine envelope
  partcam preview -p job.json --sheet 2 --check`,
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

			pv, err := pl.Preview(proj, groups, sheet-1)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(pv)
			}
			s := pv.Stats
			fmt.Printf("%s (%s sheet %d, %d parts)\n", pv.Filename, pv.Material, pv.SheetIndex+1, pv.PartCount)
			fmt.Printf("  moves:    %d\n", len(pv.Moves))
			fmt.Printf("  cutting:  %.0f mm\n", s.CutDistance)
			fmt.Printf("  rapids:   %.0f mm\n", s.RapidDistance)
			fmt.Printf("  extents:  X %.1f..%.1f  Y %.1f..%.1f  Z %.1f..%.1f\n",
				s.MinX, s.MaxX, s.MinY, s.MaxY, s.MinZ, s.MaxZ)
			fmt.Printf("  runtime:  %.1f min\n", s.EstimatedMinutes)

			if check {
				if len(pv.Bounds) > 0 {
					for _, e := range pv.Bounds {
						fmt.Println("error: " + e.Message())
					}
					return pipeline.ErrValidationBlocked
				}
				fmt.Println("  program stays inside the machine envelope")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file")
	cmd.Flags().IntVar(&sheet, "sheet", 1, "sheet number to preview (1-based)")
	cmd.Flags().BoolVar(&check, "check", false, "verify the program against the machine envelope")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
