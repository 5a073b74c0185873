package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/scorer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the latest scores of stored fragments",
		Long: "Build a validation report over the latest stored score of every fragment. " +
			"With --rescore, fragments are scored again with the current patterns and configuration.",
		Run: runReport,
	}

	cmd.Flags().StringP("source", "s", "", "Only fragments from this source")
	cmd.Flags().Bool("rescore", false, "Score fragments again instead of using stored scores")
	cmd.Flags().Bool("save", false, "With --rescore, store the new scores")

	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	rescore, _ := cmd.Flags().GetBool("rescore")
	save, _ := cmd.Flags().GetBool("save")

	cfg := loadConfig()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stored, err := s.ExportAll(cmd.Context(), source)
	if err != nil {
		exitErr("load fragments", err)
	}

	var results []*model.ScoreResult
	if rescore {
		sc, err := newScorer(cfg)
		if err != nil {
			exitErr("load scorer", err)
		}
		fragments := make([]model.Fragment, len(stored))
		for i, f := range stored {
			fragments[i] = f.Fragment
		}
		batch, err := sc.ScoreBatch(cmd.Context(), fragments, cfg.Workers)
		if err != nil {
			exitErr("score", err)
		}
		for _, b := range batch {
			if b.Result == nil {
				continue
			}
			results = append(results, b.Result)
			if save {
				if err := s.SaveScore(cmd.Context(), b.FragmentID, b.Result); err != nil {
					exitErr("save score", err)
				}
			}
		}
	} else {
		for _, f := range stored {
			if f.Score != nil {
				results = append(results, f.Score)
			}
		}
	}

	rep := scorer.BuildReport(results)
	if textFormat() {
		fmt.Fprint(cmd.OutOrStdout(), rep.String())
		return
	}
	printJSON(cmd, rep)
}
