package cmd

import (
	"fmt"

	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/solatis/fieldfilter/internal/loader"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var datasetPath, name string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a dataset file into the store",
		Long: `Reads a {name, fields, records} file (JSON or YAML) and replaces the stored
dataset of that name. The name defaults to the file name without extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.config()
			if err != nil {
				return err
			}
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}

			ds, err := loader.ReadDataset(datasetPath)
			if err != nil {
				return err
			}
			if name != "" {
				ds.Name = name
			}

			database, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := requireMigrated(ctx, database); err != nil {
				return err
			}

			store, err := db.NewRecordStore(database)
			if err != nil {
				return err
			}
			version, err := store.SaveDataset(ctx, *ds)
			if err != nil {
				return err
			}

			logger.Info("dataset imported", "dataset", ds.Name, "records", len(ds.Records), "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %d records, version %s\n", ds.Name, len(ds.Records), version)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (overrides the file)")
	cmd.MarkFlagRequired("dataset")

	return cmd
}
