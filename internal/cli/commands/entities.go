package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/xrmgen/compiler/gen"
)

// NewEntitiesCommand creates the entities command
func NewEntitiesCommand() *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the selected entities",
		Long: `List the entities that generation would include, with their code names.

With --available, list every entity of the dump that can be selected
instead. Non-standard system entities are hidden unless
--include-non-standard is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if available {
				color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "Entities in %s:\n", a.cfg.Source)
				records, err := a.source.AllEntities(cmd.Context(), a.cfg.IncludeUnpublished)
				if err != nil {
					return err
				}
				for _, name := range gen.AvailableNames(records, a.cfg.IncludeNonStandard) {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			c, err := a.mapper.CreateContext(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOGICAL NAME\tCODE NAME\tDISPLAY NAME\tFIELDS")
			for _, e := range c.Entities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.LogicalName, e.Name, e.DisplayName, len(e.Fields))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&available, "available", "a", false, "List all selectable entities of the dump")
	return cmd
}
