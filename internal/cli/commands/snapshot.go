package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/xrmgen/compiler/load"
)

// NewSnapshotCommand creates the snapshot command
func NewSnapshotCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "snapshot [file]",
		Short: "Write the fetched metadata to a msgpack dump",
		Long: `Fetch the metadata of the selected entities (or all entities with --all)
and store it as a msgpack dump that can be used as source for offline runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "metadata.msgpack"
			if len(args) == 1 {
				path = args[0]
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			var records []*load.Entity
			if all {
				records, err = a.source.AllEntities(cmd.Context(), a.cfg.IncludeUnpublished)
			} else {
				records, err = a.mapper.Records(cmd.Context())
			}
			if err != nil {
				return err
			}
			if err := load.WriteSnapshot(path, records); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprint(out, "✓ ")
			fmt.Fprintf(out, "Wrote %d entities to %s\n", len(records), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include every entity of the source")
	return cmd
}
