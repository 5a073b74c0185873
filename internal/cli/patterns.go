package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/patterns"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Print the effective pattern set as YAML",
		Long:  "Print the pattern set in use (the --patterns file or the built-in set). The output is a valid pattern file.",
		Run:   runPatterns,
	}

	cmd.Flags().Bool("check", false, "Only validate the pattern set against the scoring configuration")

	RootCmd.AddCommand(cmd)
}

func runPatterns(cmd *cobra.Command, args []string) {
	check, _ := cmd.Flags().GetBool("check")
	cfg := loadConfig()

	ps, err := patterns.Load(cfg.PatternsPath)
	if err != nil {
		exitErr("load patterns", err)
	}

	if check {
		if _, err := newScorer(cfg); err != nil {
			exitErr("check patterns", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"red_flags":%d,"marker_languages":%d}`+"\n", len(ps.RedFlags), len(ps.Markers))
		return
	}

	b, err := patterns.Marshal(ps)
	if err != nil {
		exitErr("marshal patterns", err)
	}
	cmd.OutOrStdout().Write(b)
}
