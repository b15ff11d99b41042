package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/project"
)

func newBackupCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up settings, custom machines and the tool library",
		Long: `Write the app configuration, custom machine profiles and the tool
library into a single JSON file. Project files are not included; they
already live wherever you saved them.`,
		Example: `  partcam backup --out partcam-backup.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("load app config: %w", err)
			}
			machines, err := project.LoadCustomMachinesFromDefault()
			if err != nil {
				return fmt.Errorf("load custom machines: %w", err)
			}
			tools, _, err := project.LoadOrCreateTools()
			if err != nil {
				return fmt.Errorf("load tool library: %w", err)
			}

			if err := project.ExportAllData(outFile, cfg, machines, tools); err != nil {
				return err
			}
			fmt.Printf("Backed up %d custom machines and %d tools to %s\n",
				len(machines), len(tools), outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "partcam-backup.json", "backup file to write")

	return cmd
}

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Restore settings, custom machines and tools from a backup",
		Long: `Read a backup created with 'partcam backup' and write its contents
back into the config directory. Existing settings, custom machines
and the tool library are replaced.`,
		Example: `  partcam restore partcam-backup.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}

			if err := project.SaveAppConfig(project.DefaultConfigPath(), data.Config); err != nil {
				return fmt.Errorf("restore app config: %w", err)
			}
			if err := project.SaveCustomMachinesToDefault(data.Machines); err != nil {
				return fmt.Errorf("restore custom machines: %w", err)
			}
			if len(data.Tools) > 0 {
				path, err := project.DefaultToolsPath()
				if err != nil {
					return err
				}
				if err := project.SaveTools(path, data.Tools); err != nil {
					return fmt.Errorf("restore tool library: %w", err)
				}
			}

			fmt.Printf("Restored %d custom machines and %d tools from %s\n",
				len(data.Machines), len(data.Tools), args[0])
			return nil
		},
	}
}
