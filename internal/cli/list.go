package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored fragments with their latest score",
		Run:   runList,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")
	cmd.Flags().String("category", "", "Filter by latest category: AUTHENTIC, LIKELY_AUTHENTIC, SUSPICIOUS, ZOMBIE")
	cmd.Flags().Float64("min-score", 0, "Only fragments whose latest score is at least this")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output fragment IDs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	category, _ := cmd.Flags().GetString("category")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	if category != "" && !model.ValidCategory(category) {
		exitErr("list", fmt.Errorf("unknown category %q", category))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	fragments, err := s.List(cmd.Context(), store.ListParams{
		Source:   source,
		Category: category,
		MinScore: minScore,
		Limit:    limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, f := range fragments {
			fmt.Fprintln(cmd.OutOrStdout(), f.ID)
		}
		return
	}

	printFragments(cmd, fragments)
}

// printFragments writes fragments as JSON, or one summary line each in text format.
func printFragments(cmd *cobra.Command, fragments []model.ScoredFragment) {
	if !textFormat() {
		if fragments == nil {
			fragments = []model.ScoredFragment{}
		}
		printJSON(cmd, fragments)
		return
	}
	w := cmd.OutOrStdout()
	for _, f := range fragments {
		score := "unscored"
		if f.Score != nil {
			score = fmt.Sprintf("%.3f %s", f.Score.Score, f.Score.Category)
		}
		fmt.Fprintf(w, "%s  %-26s %s  %s\n", f.ID, score, f.Source, excerpt(f.Text, 60))
	}
}

func excerpt(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
