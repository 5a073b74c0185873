package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score [text]",
		Short: "Score a fragment",
		Long: "Score one fragment for authenticity. Text comes from the arguments or stdin. " +
			"Related fragments named with --related are loaded from the store.",
		Run: runScore,
	}

	cmd.Flags().String("lang", "", "Language hint (e.g. en, de); empty checks all languages")
	cmd.Flags().StringArrayP("meta", "m", nil, "Metadata key=value (repeatable)")
	cmd.Flags().StringArrayP("related", "r", nil, "ID of a stored related fragment (repeatable)")
	cmd.Flags().Bool("save", false, "Store the fragment and its score")
	cmd.Flags().String("source", "", "Source recorded with --save")
	cmd.Flags().String("title", "", "Title recorded with --save")

	RootCmd.AddCommand(cmd)
}

func runScore(cmd *cobra.Command, args []string) {
	lang, _ := cmd.Flags().GetString("lang")
	metaPairs, _ := cmd.Flags().GetStringArray("meta")
	relatedIDs, _ := cmd.Flags().GetStringArray("related")
	save, _ := cmd.Flags().GetBool("save")
	source, _ := cmd.Flags().GetString("source")
	title, _ := cmd.Flags().GetString("title")

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			exitErr("read stdin", err)
		}
		text = string(data)
	}

	meta, err := parseMeta(metaPairs)
	if err != nil {
		exitErr("parse meta", err)
	}

	cfg := loadConfig()
	sc, err := newScorer(cfg)
	if err != nil {
		exitErr("load scorer", err)
	}

	f := model.Fragment{
		Text:         text,
		LanguageHint: lang,
		Metadata:     meta,
		RelatedIDs:   relatedIDs,
		Source:       source,
		Title:        title,
	}

	var s *store.SQLiteStore
	if save || len(relatedIDs) > 0 {
		s, err = store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
	}

	var related []model.Fragment
	for _, id := range relatedIDs {
		r, err := s.GetFragment(cmd.Context(), id)
		if err != nil {
			exitErr("load related", err)
		}
		related = append(related, *r)
	}

	result, err := sc.Score(f, related...)
	if err != nil {
		exitErr("score", err)
	}

	if save {
		stored, err := s.PutFragment(cmd.Context(), store.PutParams{
			Source:   source,
			Title:    title,
			Text:     text,
			Language: lang,
			Metadata: meta,
		})
		if err != nil {
			exitErr("save fragment", err)
		}
		for _, id := range relatedIDs {
			if _, err := s.Link(cmd.Context(), store.LinkParams{FromID: stored.ID, ToID: id}); err != nil {
				exitErr("link", err)
			}
		}
		if err := s.SaveScore(cmd.Context(), stored.ID, result); err != nil {
			exitErr("save score", err)
		}
		result.FragmentID = stored.ID
	}

	if textFormat() {
		writeScore(cmd.OutOrStdout(), result)
		return
	}
	printJSON(cmd, result)
}

// parseMeta turns key=value pairs into metadata. Numeric values are stored
// as numbers.
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q, want key=value", pair)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			meta[k] = n
		} else {
			meta[k] = v
		}
	}
	return meta, nil
}

func writeScore(w io.Writer, r *model.ScoreResult) {
	if r.FragmentID != "" {
		fmt.Fprintf(w, "%s  ", r.FragmentID)
	}
	fmt.Fprintf(w, "%.3f %s (confidence %.2f)\n", r.Score, r.Category, r.Confidence)
	for _, c := range r.Contributions {
		fmt.Fprintf(w, "  %-22s %+.3f\n", c.Analyzer, c.Delta)
	}
	if len(r.RedFlags) > 0 {
		fmt.Fprintf(w, "  red flags: %s\n", strings.Join(r.RedFlags, ", "))
	}
	if len(r.Markers) > 0 {
		fmt.Fprintf(w, "  markers:   %s\n", strings.Join(r.Markers, ", "))
	}
}
