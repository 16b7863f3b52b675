package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/docsense/pkg/docsense/config"
	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/ingest"
	"github.com/cognicore/docsense/pkg/docsense/stoplist"
)

func newStoplistCmd(a *app) *cobra.Command {
	var (
		data   string
		output string
		keep   []string
		th     = stoplist.DefaultThresholds()
	)

	cmd := &cobra.Command{
		Use:   "stoplist",
		Short: "Suggest stopwords from a labeled CSV table",
		Long:  "Suggests tokens that occur in many records and are spread evenly across labels. With --output the configured stoplist plus the suggestions is written as YAML for labeling.stoplist_path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := corpus.ReadFile(data)
			if err != nil {
				return err
			}

			var initial []string
			if path := a.cfg.Labeling.StoplistPath; path != "" {
				sl, err := config.LoadStoplist(path)
				if err != nil {
					return fmt.Errorf("load stoplist: %w", err)
				}
				initial = sl.Terms
			}

			tok := ingest.NewTokenizer(nil)
			tok.SetKeepNumbers(!a.cfg.Features.DropNumbers)

			mgr := stoplist.NewManager(initial)
			cands := mgr.SuggestCandidates(stoplist.ComputeStats(c, tok), th)
			mgr.Apply(cands)
			for _, term := range keep {
				mgr.Remove(strings.ToLower(term))
			}
			cands = slices.DeleteFunc(cands, func(cand stoplist.Candidate) bool { return !mgr.IsStop(cand.Token) })
			a.log.Info("suggested stopwords",
				zap.Int("records", len(c)),
				zap.Int("existing", len(initial)),
				zap.Int("candidates", len(cands)))

			out := cmd.OutOrStdout()
			if len(cands) == 0 {
				fmt.Fprintln(out, "No stopword candidates.")
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TOKEN\tDF%\tENTROPY\tSCORE")
				for _, cand := range cands {
					fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%.3f\n", cand.Token, cand.Reason.DFPercent, cand.Reason.LabelEntropy, cand.Score)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if output != "" {
				if err := config.SaveStoplist(output, &config.Stoplist{Terms: mgr.All()}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d stopwords to: %s\n", len(mgr.All()), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "ApiDocsData.csv", "Path to the labeled CSV table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged stoplist YAML here")
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Terms never to list as stopwords, even if configured")
	cmd.Flags().Float64Var(&th.DFPercent, "min-df-percent", th.DFPercent, "Minimum share of records containing the token")
	cmd.Flags().Float64Var(&th.LabelEntropy, "min-entropy", th.LabelEntropy, "Minimum normalized label entropy")
	cmd.Flags().IntVar(&th.MinDF, "min-df", th.MinDF, "Minimum number of records containing the token")
	return cmd
}
