package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract labeled descriptions from an API document into a CSV table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.open(cmd, false)
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := ds.Extract(cmd.Context(), input, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d records to: %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the Swagger/OpenAPI JSON or YAML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the CSV file")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
