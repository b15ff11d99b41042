package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/importer"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/project"
)

func newImportCommand() *cobra.Command {
	var (
		projectPath string
		material    string
		thickness   float64
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import parts from CSV, Excel or DXF into a project",
		Long: `Import a cut list (CSV or XLSX) or part outlines (DXF) and merge
the parts into a project file. An existing project gains the parts;
a missing project file is created around them.

CSV and XLSX columns are matched by header (label, width, height,
quantity, grain, material, thickness - common aliases work too); a
file without a recognizable header is read positionally. DXF closed
shapes become parts, circles inside an outline become drill
operations.`,
		Example: `  # Merge a spreadsheet cut list, filling in the stock
  partcam import parts.csv -p job.json --material birch-ply --thickness 18

  # Import part outlines drawn in CAD
  partcam import panel.dxf -p job.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]

			var result importer.ImportResult
			switch strings.ToLower(filepath.Ext(src)) {
			case ".csv", ".txt":
				result = importer.ImportCSV(src)
			case ".xlsx":
				result = importer.ImportExcel(src)
			case ".dxf":
				result = importer.ImportDXF(src)
			default:
				return fmt.Errorf("unsupported import format %q (want .csv, .xlsx or .dxf)", filepath.Ext(src))
			}

			for _, w := range result.Warnings {
				fmt.Println("warning: " + w)
			}
			for _, e := range result.Errors {
				fmt.Println("error: " + e)
			}
			if len(result.Parts) == 0 {
				return fmt.Errorf("no parts imported from %s", src)
			}

			parts := result.Parts
			if material != "" || thickness > 0 {
				parts = importer.ApplyStock(parts, material, thickness)
			}

			proj := model.NewProject()
			proj.Parts = nil
			if _, err := os.Stat(projectPath); err == nil {
				proj, err = project.Load(projectPath)
				if err != nil {
					return err
				}
			}
			proj.Parts = append(proj.Parts, parts...)

			if err := project.Save(projectPath, proj); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			rememberProject(projectPath)

			if jsonOutput {
				return printJSON(struct {
					Imported int      `json:"imported"`
					Total    int      `json:"total"`
					Errors   []string `json:"errors,omitempty"`
					Warnings []string `json:"warnings,omitempty"`
				}{len(parts), len(proj.Parts), result.Errors, result.Warnings})
			}
			fmt.Printf("Imported %d parts into %s (%d total)\n", len(parts), projectPath, len(proj.Parts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file to merge into")
	cmd.Flags().StringVar(&material, "material", "", "material for parts that carry none")
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "thickness for parts that carry none")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
