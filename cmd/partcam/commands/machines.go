package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/project"
)

func newMachinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machines",
		Short: "Manage machine profiles",
		Long: `List, inspect, add and remove machine profiles. Built-in profiles
ship with partcam; custom profiles live as JSON in the config
directory and may not shadow built-in names.`,
	}

	cmd.AddCommand(newMachinesListCommand())
	cmd.AddCommand(newMachinesShowCommand())
	cmd.AddCommand(newMachinesAddCommand())
	cmd.AddCommand(newMachinesRemoveCommand())

	return cmd
}

func newMachinesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available machine profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(reg.Profiles())
			}

			fmt.Printf("%-24s %-16s %-14s %s\n", "Name", "Bed", "Controller", "Source")
			for _, p := range reg.Profiles() {
				source := "custom"
				if reg.IsBuiltIn(p.Name()) {
					source = "built-in"
				}
				bed := fmt.Sprintf("%.0fx%.0f %s", p.Machine.TravelX, p.Machine.TravelY, p.Machine.Units)
				fmt.Printf("%-24s %-16s %-14s %s\n", p.Name(), bed, p.Machine.Controller, source)
			}
			return nil
		},
	}
}

func newMachinesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one machine profile in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			prof, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("machine %q not found (try 'partcam machines list')", args[0])
			}
			if jsonOutput {
				return printJSON(prof)
			}

			m := prof.Machine
			fmt.Printf("%s (%s)\n", m.Name, m.Controller)
			if prof.Description != "" {
				fmt.Printf("  %s\n", prof.Description)
			}
			fmt.Printf("  travel:     X %.0f  Y %.0f  Z %.0f %s\n", m.TravelX, m.TravelY, m.TravelZ, m.Units)
			fmt.Printf("  spindle:    %.0f-%.0f RPM\n", m.MinRPM, m.MaxRPM)
			fmt.Printf("  rapids:     %.0f %s/min\n", m.RapidRate, m.Units)
			fmt.Printf("  tool change: %s\n", atcLabel(m.HasATC))
			fmt.Printf("  programs:   %s, %d decimals\n", prof.Post.FileExtension, prof.Post.DecimalPlaces)
			for _, fz := range prof.Fixtures {
				fmt.Printf("  fixture:    %s at (%.0f, %.0f) %gx%g, %.0f high\n",
					fz.Label, fz.X, fz.Y, fz.Width, fz.Height, fz.ZHeight)
			}
			return nil
		},
	}
}

func atcLabel(hasATC bool) string {
	if hasATC {
		return "automatic"
	}
	return "manual"
}

func newMachinesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add FILE",
		Short: "Add a custom machine profile from a JSON file",
		Example: `  # Import a profile exported from another install
  partcam machines add my-router.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := project.ImportMachine(args[0])
			if err != nil {
				return err
			}
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			if err := reg.Add(prof); err != nil {
				return err
			}
			if err := project.SaveCustomMachinesToDefault(reg.Custom()); err != nil {
				return fmt.Errorf("save custom machines: %w", err)
			}
			fmt.Printf("Added machine %q\n", prof.Name())
			return nil
		},
	}
}

func newMachinesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a custom machine profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			if err := reg.Remove(args[0]); err != nil {
				return err
			}
			if err := project.SaveCustomMachinesToDefault(reg.Custom()); err != nil {
				return fmt.Errorf("save custom machines: %w", err)
			}
			fmt.Printf("Removed machine %q\n", args[0])
			return nil
		},
	}
}
