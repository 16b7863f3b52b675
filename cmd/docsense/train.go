package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// defaultProbe is classified after training as a quick sanity check.
const defaultProbe = "Use your bearer token in the Authorization header"

func newTrainCmd(a *app) *cobra.Command {
	var data, probe string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier on a labeled CSV table and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			defer ds.Close()

			ctx := cmd.Context()
			m, ev, err := ds.Train(ctx, data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model: %s\n", m.ID)
			fmt.Fprintf(out, "Records: %d, training accuracy: %.1f%%\n", ev.Total, 100*ev.Accuracy)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tRECORDS\tCORRECT")
			for _, ls := range ev.PerLabel {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", ls.Label, ls.Support, ls.Correct)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if probe != "" {
				p, err := ds.Predict(ctx, m.ID, probe)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Prediction: %s\n", p.Label)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "ApiDocsData.csv", "Path to the labeled CSV table")
	cmd.Flags().StringVar(&a.dbPath, "db", "", "Model database (default from config, docsense.db)")
	cmd.Flags().StringVar(&probe, "probe", defaultProbe, "Text to classify after training; empty to skip")
	return cmd
}
