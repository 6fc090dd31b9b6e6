package cmd

import (
	"errors"
	"fmt"

	"github.com/solatis/fieldfilter/internal/filter"
	"github.com/solatis/fieldfilter/internal/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var fieldsPath, conditionsPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check conditions against field definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := loader.ReadFields(fieldsPath)
			if err != nil {
				return err
			}
			conds, err := loader.ReadConditions(conditionsPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = filter.ValidateConditions(fields, conds)
			if err == nil {
				fmt.Fprintf(out, "%d conditions valid\n", len(conds))
				return nil
			}

			var joined interface{ Unwrap() []error }
			problems := []error{err}
			if errors.As(err, &joined) {
				problems = joined.Unwrap()
			}
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			return fmt.Errorf("%d of %d conditions invalid", len(problems), len(conds))
		},
	}

	cmd.Flags().StringVar(&fieldsPath, "fields", "", "field definitions file")
	cmd.Flags().StringVar(&conditionsPath, "conditions", "", "conditions file")
	cmd.MarkFlagRequired("fields")
	cmd.MarkFlagRequired("conditions")

	return cmd
}
