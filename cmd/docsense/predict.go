package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		text    string
		modelID string
		scores  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the documentation category of a text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			defer ds.Close()

			p, err := ds.Predict(cmd.Context(), modelID, text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Prediction: %s\n", p.Label)
			if scores {
				labels := make([]string, 0, len(p.Scores))
				for l := range p.Scores {
					labels = append(labels, l)
				}
				sort.Slice(labels, func(i, j int) bool {
					if p.Scores[labels[i]] != p.Scores[labels[j]] {
						return p.Scores[labels[i]] > p.Scores[labels[j]]
					}
					return labels[i] < labels[j]
				})
				for _, l := range labels {
					fmt.Fprintf(out, "  %-14s %.4f\n", l, p.Scores[l])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to classify")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model ID (default: most recent)")
	cmd.Flags().StringVar(&a.dbPath, "db", "", "Model database (default from config, docsense.db)")
	cmd.Flags().BoolVar(&scores, "scores", false, "Print the score of every label")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
