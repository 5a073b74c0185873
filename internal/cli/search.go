package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search fragments by keyword",
		Long:  "Search fragment text and titles for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")
	cmd.Flags().String("category", "", "Filter by latest category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	if category != "" && !model.ValidCategory(category) {
		exitErr("search", fmt.Errorf("unknown category %q", category))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query:    query,
		Source:   source,
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	printFragments(cmd, results)
}
