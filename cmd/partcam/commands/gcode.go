package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/pipeline"
)

func newGcodeCommand() *cobra.Command {
	var (
		projectPath string
		outputDir   string
		withLabels  bool
		withPDF     bool
		withDXF     bool
		sheetCost   float64
	)

	cmd := &cobra.Command{
		Use:   "gcode",
		Short: "Generate G-code and shop paperwork for a project",
		Long: `Validate, nest and render the project, then write the full artifact
set to the output directory: one program and one layout SVG per sheet,
the cut list as CSV and XLSX, and the bill of materials as JSON.
Layout PDFs, part labels and per-sheet DXF outlines are opt-in.`,
		Example: `  # Programs plus cut list, BOM and layout SVGs
  partcam gcode -p job.json -o out/

  # Everything, including labels and layout PDFs
  partcam gcode -p job.json -o out/ --labels --pdf --dxf`,
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
			printWarnings(report)

			manifest, err := pl.Export(cmd.Context(), proj, groups, outputDir, pipeline.ExportOptions{
				PDF:        withPDF,
				Labels:     withLabels,
				DXF:        withDXF,
				SheetPrice: sheetCost,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(manifest)
			}
			fmt.Printf("Wrote %d files to %s\n", len(manifest.Files), manifest.Dir)
			for _, name := range manifest.Files {
				fmt.Println("  " + name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "output", "output directory")
	cmd.Flags().BoolVar(&withLabels, "labels", false, "also write part labels as PDF")
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "also write sheet layouts as PDF")
	cmd.Flags().BoolVar(&withDXF, "dxf", false, "also write sheet layouts as DXF")
	cmd.Flags().Float64Var(&sheetCost, "sheet-cost", 0, "price per sheet for the purchase estimate")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
