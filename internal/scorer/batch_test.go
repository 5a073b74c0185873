package scorer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/memory-authenticity/internal/model"
)

func TestScoreBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestScorer(t)
	fragments := []model.Fragment{
		{ID: "a", Text: "The lighthouse keeper repaired the lantern during the winter storm", RelatedIDs: []string{"b"}},
		{ID: "b", Text: "During the winter storm the lighthouse keeper climbed to the lantern"},
		{ID: "c", Text: "  "},
		{ID: "d", Text: "as an AI assistant"},
	}

	results, err := s.ScoreBatch(context.Background(), fragments, 2)
	require.NoError(t, err)
	require.Len(t, results, len(fragments))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fragments[i].ID, r.FragmentID)
	}

	assert.InDelta(t, 0.2, results[0].Result.Delta(AnalyzerConnectivity), 1e-12)
	assert.Equal(t, "a", results[0].Result.FragmentID)
	assert.Zero(t, results[1].Result.Delta(AnalyzerConnectivity))

	assert.ErrorIs(t, results[2].Err, ErrInvalidInput)
	assert.Nil(t, results[2].Result)
	assert.NotEmpty(t, results[2].Error)

	assert.InDelta(t, 0.25, results[3].Result.Score, 1e-9)
}

func TestScoreBatchMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestScorer(t)
	var fragments []model.Fragment
	for i := 0; i < 200; i++ {
		text := fmt.Sprintf("Entry %d: I felt confused about the harbor visit", i)
		if i%3 == 0 {
			text = fmt.Sprintf("Entry %d: as an AI assistant I summarize the harbor visit", i)
		}
		fragments = append(fragments, model.Fragment{ID: fmt.Sprint(i), Text: text})
	}

	results, err := s.ScoreBatch(context.Background(), fragments, 0)
	require.NoError(t, err)
	for i, f := range fragments {
		want, err := s.Score(f)
		require.NoError(t, err)
		assert.Equal(t, want, results[i].Result)
	}
}

func TestScoreBatchCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestScorer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ScoreBatch(ctx, []model.Fragment{{Text: "hello there"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
