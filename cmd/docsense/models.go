package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage stored models",
	}
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Model database (default from config, docsense.db)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored models, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			defer ds.Close()

			models, err := ds.Models(cmd.Context())
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No models stored.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tRECORDS\tACCURACY\tSOURCE\tLABELS")
			for _, m := range models {
				labels := make([]string, len(m.Labels))
				for i, lc := range m.Labels {
					labels[i] = fmt.Sprintf("%s=%d", lc.Label, lc.Count)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\t%s\t%s\n",
					m.ID, m.CreatedAt.Local().Format(time.DateTime), m.Records, 100*m.Accuracy, m.Source, strings.Join(labels, ", "))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.open(cmd, true)
			if err != nil {
				return err
			}
			defer ds.Close()

			if err := ds.DeleteModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted model %s\n", args[0])
			return nil
		},
	})
	return cmd
}
