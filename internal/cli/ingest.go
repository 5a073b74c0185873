package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-authenticity/internal/chunker"
	"github.com/rcliao/memory-authenticity/internal/ingest"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Ingest a directory of memory documents",
		Long: "Split markdown, text, JSON, HTML and PDF memory documents into fragments, " +
			"score them and store fragments, relations and scores.",
		Args: cobra.ExactArgs(1),
		Run:  runIngest,
	}

	cmd.Flags().StringSlice("include", nil, "Include globs (default: config ingest.include)")
	cmd.Flags().StringSlice("exclude", nil, "Exclude globs (default: config ingest.exclude)")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent scorers per document")
	cmd.Flags().Bool("no-peers", false, "Do not relate consecutive sections of a document")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	workers, _ := cmd.Flags().GetInt("workers")
	noPeers, _ := cmd.Flags().GetBool("no-peers")

	cfg := loadConfig()
	logger := newLogger(cfg)
	defer logger.Sync()

	sc, err := newScorer(cfg)
	if err != nil {
		exitErr("load scorer", err)
	}

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opts := ingest.Options{
		Include:     cfg.Ingest.Include,
		Exclude:     cfg.Ingest.Exclude,
		Workers:     cfg.Workers,
		Chunk:       chunker.DefaultOptions(),
		RelatePeers: cfg.Ingest.RelatePeers && !noPeers,
	}
	if cmd.Flags().Changed("include") {
		opts.Include = include
	}
	if cmd.Flags().Changed("exclude") {
		opts.Exclude = exclude
	}
	if workers > 0 {
		opts.Workers = workers
	}
	if cfg.Ingest.MinSize > 0 {
		opts.Chunk.MinSize = cfg.Ingest.MinSize
	}

	logger.Info("ingesting", zap.String("dir", args[0]), zap.String("db", cfg.DBPath))
	sum, err := ingest.New(sc, s, logger, opts).Run(cmd.Context(), args[0])
	if err != nil {
		exitErr("ingest", err)
	}

	if textFormat() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "files:     %d/%d processed\n", sum.ProcessedFiles, sum.TotalFiles)
		fmt.Fprintf(w, "fragments: %d (%d verified)\n", sum.TotalFragments, sum.VerifiedFragments)
		for _, e := range sum.Errors {
			fmt.Fprintf(w, "error:     %s\n", e)
		}
		return
	}
	printJSON(cmd, sum)
}
