package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export fragments as JSON",
		Long:  "Export fragments with their relations and latest scores as a JSON array. Filter by source with -s.",
		Run:   runExport,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	fragments, err := s.ExportAll(cmd.Context(), source)
	if err != nil {
		exitErr("export", err)
	}

	printFragments(cmd, fragments)
}
