package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Declare or remove a relation between fragments",
		Run:   runLink,
	}

	cmd.Flags().String("from", "", "Fragment declaring the relation")
	cmd.Flags().String("to", "", "Related fragment")
	cmd.Flags().Bool("rm", false, "Remove the link")

	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	rm, _ := cmd.Flags().GetBool("rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	link, err := s.Link(cmd.Context(), store.LinkParams{
		FromID: from,
		ToID:   to,
		Remove: rm,
	})
	if err != nil {
		exitErr("link", err)
	}

	printJSON(cmd, link)
}
