package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/scorer"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch [file.jsonl]",
		Short: "Score a JSON-lines file of fragments",
		Long: "Score every fragment of a JSON-lines file (or stdin) concurrently and print the results with a summary report. " +
			"Each line is a fragment object: {\"id\", \"text\", \"language\", \"metadata\", \"related\"}.",
		Args: cobra.MaximumNArgs(1),
		Run:  runBatch,
	}

	cmd.Flags().IntP("workers", "w", 0, "Concurrent scorers (default: config workers, then GOMAXPROCS)")
	cmd.Flags().Bool("save", false, "Store fragments, relations and scores")

	RootCmd.AddCommand(cmd)
}

type batchOutput struct {
	Results []scorer.BatchResult `json:"results"`
	Report  scorer.Report        `json:"report"`
}

func runBatch(cmd *cobra.Command, args []string) {
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("save")

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		in = f
	}

	fragments, err := readFragments(in)
	if err != nil {
		exitErr("read fragments", err)
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	defer logger.Sync()

	sc, err := newScorer(cfg)
	if err != nil {
		exitErr("load scorer", err)
	}
	if workers == 0 {
		workers = cfg.Workers
	}

	results, err := sc.ScoreBatch(cmd.Context(), fragments, workers)
	if err != nil {
		exitErr("score batch", err)
	}

	if save {
		s, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		if err := saveBatch(cmd, s, logger, fragments, results); err != nil {
			exitErr("save batch", err)
		}
	}

	scored := make([]*model.ScoreResult, 0, len(results))
	for _, r := range results {
		if r.Result != nil {
			scored = append(scored, r.Result)
		}
	}
	out := batchOutput{Results: results, Report: scorer.BuildReport(scored)}

	if textFormat() {
		w := cmd.OutOrStdout()
		for _, r := range out.Results {
			if r.Err != nil {
				fmt.Fprintf(w, "#%d %s  error: %v\n", r.Index, r.FragmentID, r.Err)
				continue
			}
			fmt.Fprintf(w, "#%d ", r.Index)
			writeScore(w, r.Result)
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, out.Report.String())
		return
	}
	printJSON(cmd, out)
}

// readFragments decodes one fragment per non-blank line.
func readFragments(r io.Reader) ([]model.Fragment, error) {
	var fragments []model.Fragment
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var f model.Fragment
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fragments = append(fragments, f)
	}
	return fragments, sc.Err()
}

// saveBatch stores scored fragments, then the relations between stored
// fragments. Relations to fragments that are not stored are skipped.
func saveBatch(cmd *cobra.Command, s *store.SQLiteStore, logger *zap.Logger, fragments []model.Fragment, results []scorer.BatchResult) error {
	ctx := cmd.Context()
	ids := make([]string, len(fragments))
	for i, r := range results {
		if r.Result == nil {
			continue
		}
		f := fragments[i]
		stored, err := s.PutFragment(ctx, store.PutParams{
			ID:       f.ID,
			Source:   f.Source,
			Title:    f.Title,
			Text:     f.Text,
			Language: f.LanguageHint,
			Metadata: f.Metadata,
		})
		if err != nil {
			return fmt.Errorf("fragment %d: %w", i, err)
		}
		ids[i] = stored.ID
		r.Result.FragmentID = stored.ID
		if err := s.SaveScore(ctx, stored.ID, r.Result); err != nil {
			return fmt.Errorf("score %d: %w", i, err)
		}
	}

	for i, f := range fragments {
		if ids[i] == "" {
			continue
		}
		for _, to := range f.RelatedIDs {
			if to == ids[i] {
				continue
			}
			_, err := s.Link(ctx, store.LinkParams{FromID: ids[i], ToID: to})
			if errors.Is(err, store.ErrNotFound) {
				logger.Warn("skipping relation to unknown fragment", zap.String("from", ids[i]), zap.String("to", to))
				continue
			}
			if err != nil {
				return fmt.Errorf("link %s: %w", ids[i], err)
			}
		}
	}
	return nil
}
