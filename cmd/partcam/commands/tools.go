package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/project"
)

func newToolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage the tool library",
		Long: `List and extend the shared tool library. The library is created
with a starter set on first use; projects snapshot it, so edits here
affect new projects only.`,
	}

	cmd.AddCommand(newToolsListCommand())
	cmd.AddCommand(newToolsAddCommand())

	return cmd
}

func newToolsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tools in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, path, err := project.LoadOrCreateTools()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(tools)
			}

			fmt.Printf("%-4s %-24s %-10s %9s %8s %7s %7s %7s\n",
				"T#", "Name", "Kind", "Diameter", "Flute", "Feed", "Plunge", "RPM")
			for _, t := range tools {
				fmt.Printf("T%-3d %-24s %-10s %8.1f %7.1f %7.0f %7.0f %7.0f\n",
					t.Number, t.Name, t.Kind, t.Diameter, t.CuttingLength,
					t.FeedRate, t.PlungeRate, t.RPM)
			}
			fmt.Printf("\nlibrary: %s\n", path)
			return nil
		},
	}
}

func newToolsAddCommand() *cobra.Command {
	var (
		number        int
		name          string
		kind          string
		diameter      float64
		cuttingLength float64
		feed          float64
		plunge        float64
		rpm           float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tool to the library",
		Example: `  partcam tools add --number 5 --name "8mm Compression" \
    --kind end_mill --diameter 8 --length 28 --feed 2200 --plunge 600 --rpm 16000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch model.ToolKind(kind) {
			case model.KindEndMill, model.KindDrill, model.KindVBit:
			default:
				return fmt.Errorf("unknown tool kind %q (want %s, %s or %s)",
					kind, model.KindEndMill, model.KindDrill, model.KindVBit)
			}

			tools, path, err := project.LoadOrCreateTools()
			if err != nil {
				return err
			}
			tools, err = project.AddTool(tools, model.Tool{
				Number:        number,
				Name:          name,
				Kind:          model.ToolKind(kind),
				Diameter:      diameter,
				CuttingLength: cuttingLength,
				FeedRate:      feed,
				PlungeRate:    plunge,
				RPM:           rpm,
			})
			if err != nil {
				return err
			}
			if err := project.SaveTools(path, tools); err != nil {
				return err
			}
			fmt.Printf("Added T%d %s\n", number, name)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "tool number (identity in programs)")
	cmd.Flags().StringVar(&name, "name", "", "tool name")
	cmd.Flags().StringVar(&kind, "kind", string(model.KindEndMill), "tool kind (end_mill, drill, v_bit)")
	cmd.Flags().Float64Var(&diameter, "diameter", 0, "cutting diameter in mm")
	cmd.Flags().Float64Var(&cuttingLength, "length", 0, "flute length in mm")
	cmd.Flags().Float64Var(&feed, "feed", 0, "feed rate in mm/min")
	cmd.Flags().Float64Var(&plunge, "plunge", 0, "plunge rate in mm/min")
	cmd.Flags().Float64Var(&rpm, "rpm", 0, "spindle speed")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("diameter")

	return cmd
}
