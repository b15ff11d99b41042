package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/pipeline"
)

func newValidateCommand() *cobra.Command {
	var (
		projectPath string
		machineName string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a project against a machine profile",
		Long: `Validate a project ahead of generation.

This command checks:
  - Parts that fit the machine bed in no orientation
  - Tool assignments referencing missing tools
  - Spindle speeds outside the machine's RPM range
  - Cut depths beyond the assigned tool's flute length
  - Sheet sizes that exceed the bed (with pre-cutting advice)
  - Tool changes on machines without a tool changer`,
		Example: `  # Validate against the project's configured machine
  partcam validate -p job.json

  # Validate against a specific machine profile
  partcam validate -p job.json -m "Shapeoko HDM"`,
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
			if machineName != "" {
				proj.Machine = machineName
			}
			warnUnknownMachine(pl, proj)

			report := pl.Validate(proj)
			if jsonOutput {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				printReport(report)
				if report.OK() && len(report.Warnings) == 0 {
					fmt.Printf("%s validates cleanly against %q.\n", proj.Name, pl.Registry.Get(proj.Machine).Name())
				}
			}
			if !report.OK() {
				return pipeline.ErrValidationBlocked
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file")
	cmd.Flags().StringVarP(&machineName, "machine", "m", "", "machine profile to validate against")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
