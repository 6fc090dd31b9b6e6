package cmd

import (
	"fmt"

	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.config()
			if err != nil {
				return err
			}
			database, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			out := cmd.OutOrStdout()
			if statusOnly {
				statuses, err := db.MigrateStatus(ctx, database)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(out, "%s\t%s\n", s.ID, state)
				}
				return nil
			}

			ran, err := db.MigrateUp(ctx, database)
			if err != nil {
				return err
			}
			if len(ran) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}
			for _, id := range ran {
				fmt.Fprintf(out, "applied %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "list migrations without applying")
	return cmd
}
