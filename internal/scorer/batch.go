package scorer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// BatchResult is the outcome for one fragment of a batch. Err is set when
// that fragment alone could not be scored.
type BatchResult struct {
	Index      int                `json:"index"`
	FragmentID string             `json:"fragment_id,omitempty"`
	Result     *model.ScoreResult `json:"result,omitempty"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

// ScoreBatch scores fragments concurrently on up to workers goroutines
// (GOMAXPROCS when workers <= 0). Related fragments are resolved by ID from
// within the batch. Results keep input order. Only context cancellation
// fails the whole batch.
func (s *Scorer) ScoreBatch(ctx context.Context, fragments []model.Fragment, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	byID := make(map[string]int, len(fragments))
	for i, f := range fragments {
		if f.ID != "" {
			byID[f.ID] = i
		}
	}

	results := make([]BatchResult, len(fragments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range fragments {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := fragments[i]
			res, err := s.Score(f, relatedFrom(f, fragments, byID)...)
			br := BatchResult{Index: i, FragmentID: f.ID, Result: res, Err: err}
			if err != nil {
				br.Error = err.Error()
			}
			results[i] = br
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func relatedFrom(f model.Fragment, fragments []model.Fragment, byID map[string]int) []model.Fragment {
	if len(f.RelatedIDs) == 0 {
		return nil
	}
	related := make([]model.Fragment, 0, len(f.RelatedIDs))
	for _, id := range f.RelatedIDs {
		if i, ok := byID[id]; ok {
			related = append(related, fragments[i])
		}
	}
	return related
}
