package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/project"
)

func newTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Start projects from built-in templates",
	}

	cmd.AddCommand(newTemplateListCommand())
	cmd.AddCommand(newTemplateNewCommand())

	return cmd
}

func newTemplateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in project templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := project.Templates()
			if jsonOutput {
				out := make([]map[string]string, len(templates))
				for i, t := range templates {
					out[i] = map[string]string{"name": t.Name, "description": t.Description}
				}
				return printJSON(out)
			}
			for _, t := range templates {
				fmt.Printf("%-16s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
}

func newTemplateNewCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a project file from a template",
		Example: `  # A carcass cabinet ready to customize
  partcam template new base-cabinet

  # Write to a specific file
  partcam template new drawer-box -o kitchen/drawer.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			proj, err := project.NewFromTemplate(name)
			if err != nil {
				return err
			}
			path := outPath
			if path == "" {
				path = name + ".json"
			}
			if err := project.Save(path, proj); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			rememberProject(path)
			fmt.Printf("Created %s from template %q (%d parts)\n", path, name, len(proj.Parts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "project file to create (default NAME.json)")

	return cmd
}
