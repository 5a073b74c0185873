// Package ingest walks a directory of memory documents, splits them into
// fragments, scores them and stores the results.
package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/memory-authenticity/internal/chunker"
	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/scorer"
	"github.com/rcliao/memory-authenticity/internal/store"
)

// VerifiedThreshold is the score above which a fragment counts as verified.
const VerifiedThreshold = 0.7

// Sink is the persistence the ingester writes to. Each document is written
// in one transaction.
type Sink interface {
	WithTx(ctx context.Context, fn func(store.Writer) error) error
}

// Options configures a run.
type Options struct {
	Include []string
	Exclude []string
	Workers int
	Chunk   chunker.Options

	// RelatePeers makes consecutive fragments of one document declare each
	// other as related.
	RelatePeers bool
}

// DefaultOptions returns the default ingestion options.
func DefaultOptions() Options {
	return Options{
		Include:     []string{"**/*.md", "**/*.txt", "**/*.json", "**/*.html", "**/*.pdf"},
		Exclude:     []string{"**/.git/**", "**/node_modules/**"},
		Chunk:       chunker.DefaultOptions(),
		RelatePeers: true,
	}
}

// Summary reports the outcome of a run.
type Summary struct {
	TotalFiles        int                    `json:"total_files"`
	ProcessedFiles    int                    `json:"processed_files"`
	TotalFragments    int                    `json:"total_fragments"`
	VerifiedFragments int                    `json:"verified_fragments"`
	Categories        map[model.Category]int `json:"categories"`
	Errors            []string               `json:"errors"`
	Sources           []string               `json:"sources"`
}

// Ingester runs the ingestion pipeline.
type Ingester struct {
	scorer *scorer.Scorer
	sink   Sink
	logger *zap.Logger
	opts   Options

	mu      sync.Mutex
	entropy *rand.Rand
}

// New creates an Ingester. A nil logger discards log output.
func New(sc *scorer.Scorer, sink Sink, logger *zap.Logger, opts Options) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Include) == 0 {
		opts.Include = DefaultOptions().Include
	}
	if opts.Chunk.TargetSize == 0 {
		opts.Chunk = chunker.DefaultOptions()
	}
	return &Ingester{
		scorer:  sc,
		sink:    sink,
		logger:  logger,
		opts:    opts,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ingests every matching document under dir. Failures in a single file
// are recorded in the summary and do not stop the run.
func (in *Ingester) Run(ctx context.Context, dir string) (*Summary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("memory dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("memory dir %s is not a directory", dir)
	}

	files, err := discover(dir, in.opts.Include, in.opts.Exclude)
	if err != nil {
		return nil, err
	}
	in.logger.Info("discovered memory files", zap.String("dir", dir), zap.Int("files", len(files)))

	sum := &Summary{
		TotalFiles: len(files),
		Categories: make(map[model.Category]int),
		Errors:     []string{},
		Sources:    []string{},
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		n, err := in.ingestFile(ctx, dir, rel, sum)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			in.logger.Warn("ingest file failed", zap.String("file", rel), zap.Error(err))
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		sum.ProcessedFiles++
		if n > 0 {
			sum.Sources = append(sum.Sources, rel)
		}
	}
	sort.Strings(sum.Sources)

	in.logger.Info("ingestion complete",
		zap.Int("processed_files", sum.ProcessedFiles),
		zap.Int("fragments", sum.TotalFragments),
		zap.Int("verified", sum.VerifiedFragments),
		zap.Int("errors", len(sum.Errors)))
	return sum, nil
}

// ingestFile extracts, scores and stores one document, replacing whatever an
// earlier run stored for it. It returns the number of fragments stored.
func (in *Ingester) ingestFile(ctx context.Context, dir, rel string, sum *Summary) (int, error) {
	pieces, err := extract(dir, rel, in.opts.Chunk)
	if err != nil {
		return 0, err
	}
	if len(pieces) == 0 {
		in.logger.Debug("no substantial content", zap.String("file", rel))
		return 0, in.sink.WithTx(ctx, func(w store.Writer) error {
			_, err := w.DeleteSource(ctx, rel)
			return err
		})
	}

	fragments := in.buildFragments(rel, pieces)
	results, err := in.scorer.ScoreBatch(ctx, fragments, in.opts.Workers)
	if err != nil {
		return 0, err
	}

	var scored []scorer.BatchResult
	err = in.sink.WithTx(ctx, func(w store.Writer) error {
		replaced, err := w.DeleteSource(ctx, rel)
		if err != nil {
			return err
		}
		if replaced > 0 {
			in.logger.Debug("replacing fragments", zap.String("file", rel), zap.Int("previous", replaced))
		}
		for _, f := range fragments {
			if _, err := w.PutFragment(ctx, store.PutParams{
				ID:       f.ID,
				Source:   f.Source,
				Title:    f.Title,
				Text:     f.Text,
				Metadata: f.Metadata,
			}); err != nil {
				return fmt.Errorf("store fragment: %w", err)
			}
		}
		for _, f := range fragments {
			for _, to := range f.RelatedIDs {
				if _, err := w.Link(ctx, store.LinkParams{FromID: f.ID, ToID: to}); err != nil {
					return fmt.Errorf("link fragments: %w", err)
				}
			}
		}
		for _, br := range results {
			if br.Err != nil {
				continue
			}
			if err := w.SaveScore(ctx, br.FragmentID, br.Result); err != nil {
				return fmt.Errorf("store score: %w", err)
			}
			scored = append(scored, br)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, br := range results {
		if br.Err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s#%d: %v", rel, br.Index, br.Err))
		}
	}
	for _, br := range scored {
		sum.TotalFragments++
		sum.Categories[br.Result.Category]++
		if br.Result.Score > VerifiedThreshold {
			sum.VerifiedFragments++
		}
		in.logger.Debug("scored fragment",
			zap.String("file", rel),
			zap.String("id", br.FragmentID),
			zap.Float64("score", br.Result.Score),
			zap.String("category", string(br.Result.Category)))
	}
	return len(fragments), nil
}

func (in *Ingester) buildFragments(rel string, pieces []piece) []model.Fragment {
	fragments := make([]model.Fragment, len(pieces))
	for i, p := range pieces {
		fragments[i] = model.Fragment{
			ID:       in.newID(),
			Text:     p.text,
			Metadata: p.metadata,
			Source:   rel,
			Title:    p.title,
		}
	}
	if !in.opts.RelatePeers {
		return fragments
	}
	for i := range fragments {
		if i > 0 {
			fragments[i].RelatedIDs = append(fragments[i].RelatedIDs, fragments[i-1].ID)
		}
		if i < len(fragments)-1 {
			fragments[i].RelatedIDs = append(fragments[i].RelatedIDs, fragments[i+1].ID)
		}
	}
	return fragments
}

func (in *Ingester) newID() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), in.entropy).String()
}
