package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/facade/sandbox"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

func newToolsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sb, err := sandbox.New()
			if err != nil {
				return err
			}
			registry, err := tool.NewCatalog(sb.Facades())
			if err != nil {
				return err
			}

			defs := registry.Definitions()
			if asJSON {
				out := make([]map[string]any, 0, len(defs))
				for _, d := range defs {
					out = append(out, map[string]any{
						"name":        d.Name,
						"description": d.Description,
						"uiHint":      d.UIHint,
						"parameters":  d.JSONSchema(),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tUI HINT\tDESCRIPTION")
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.UIHint, d.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON with argument schemas")
	return cmd
}
