// Package commands implements the partcam command tree. Every command
// loads its inputs, drives the processing pipeline and prints either
// human-readable text or JSON; nothing here holds state between runs.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/pipeline"
)

// Global flags
var (
	jsonOutput bool
	verbose    bool
)

// Execute runs the root command and maps the outcome onto process exit
// codes: 0 success, 1 hard failure, 2 validation errors present.
func Execute(ctx context.Context, version string) int {
	rootCmd := newRootCommand(version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, pipeline.ErrValidationBlocked) {
			return 2
		}
		return 1
	}
	return 0
}

func newRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "partcam",
		Short: "PartCAM - sheet goods nesting and G-code generation",
		Long: `PartCAM turns a cut list into CNC programs. It nests parts onto
stock sheets per material and thickness, synthesizes toolpaths for
profiles, dados, drilling and pocket holes, and renders one G-code
program per sheet for the selected machine profile - plus the shop
paperwork: cut lists, bill of materials, part labels and layout
drawings.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newNestCommand())
	rootCmd.AddCommand(newGcodeCommand())
	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newMachinesCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newEstimateCommand())
	rootCmd.AddCommand(newTemplateCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newBackupCommand())
	rootCmd.AddCommand(newRestoreCommand())

	return rootCmd
}
