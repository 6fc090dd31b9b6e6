package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/solatis/fieldfilter/internal/filter"
	"github.com/solatis/fieldfilter/internal/loader"
	"github.com/solatis/fieldfilter/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

type filterOptions struct {
	records    string
	fields     string
	conditions string
	sort       string
	locale     string
}

func newFilterCmd(root *rootOptions) *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter and sort a records file",
		Long: `Reads records (JSON or YAML), applies the conditions file and prints the
surviving records as indented JSON. With --fields, conditions are validated
first; violations are logged, or fatal when filter.strict_operators is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.records, "records", "", "records file (JSON or YAML list)")
	cmd.Flags().StringVar(&opts.fields, "fields", "", "field definitions file; enables validation")
	cmd.Flags().StringVar(&opts.conditions, "conditions", "", "conditions file")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort as key[:asc|desc]")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "collation locale (overrides filter.locale)")
	cmd.MarkFlagRequired("records")

	return cmd
}

func runFilter(cmd *cobra.Command, root *rootOptions, opts *filterOptions) error {
	cfg, err := root.config()
	if err != nil {
		return err
	}
	logger, err := root.logger(cmd)
	if err != nil {
		return err
	}

	records, err := loader.ReadRecords(opts.records)
	if err != nil {
		return err
	}

	var conds []types.Condition
	if opts.conditions != "" {
		if conds, err = loader.ReadConditions(opts.conditions); err != nil {
			return err
		}
	}

	sortCfg, err := loader.ParseSort(opts.sort)
	if err != nil {
		return err
	}

	locale := cfg.Filter.Locale
	if opts.locale != "" {
		locale = opts.locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}

	if opts.fields != "" {
		fields, err := loader.ReadFields(opts.fields)
		if err != nil {
			return err
		}
		if err := filter.ValidateConditions(fields, conds); err != nil {
			if cfg.Filter.StrictOperators {
				return err
			}
			logger.Warn("conditions failed validation", "error", err)
		}
	}

	engine := filter.NewEngine(filter.WithLogger(logger), filter.WithLocale(tag))
	result := engine.Run(records, conds, sortCfg)

	out := result.Records
	if out == nil {
		out = []types.Record{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	logger.Info("filter complete",
		"total", result.Total,
		"matched", result.Matched,
		"dropped", result.Dropped,
	)
	return nil
}
