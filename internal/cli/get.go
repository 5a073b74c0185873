package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a fragment with its relations and latest score",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("links", false, "Include incoming and outgoing links")

	RootCmd.AddCommand(cmd)
}

type getOutput struct {
	model.ScoredFragment
	Links []store.Link `json:"links,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) {
	withLinks, _ := cmd.Flags().GetBool("links")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	f, err := s.GetFragment(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	out := getOutput{ScoredFragment: model.ScoredFragment{Fragment: *f}}
	score, err := s.LatestScore(cmd.Context(), f.ID)
	switch {
	case err == nil:
		out.Score = score
	case !errors.Is(err, store.ErrNotFound):
		exitErr("get score", err)
	}

	if withLinks {
		out.Links, err = s.GetLinks(cmd.Context(), f.ID)
		if err != nil {
			exitErr("get links", err)
		}
	}

	if textFormat() {
		printFragments(cmd, []model.ScoredFragment{out.ScoredFragment})
		return
	}
	printJSON(cmd, out)
}
