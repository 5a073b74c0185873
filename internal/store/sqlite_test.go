package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/memory-authenticity/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err, "create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func putFragment(t *testing.T, s *SQLiteStore, p PutParams) *model.Fragment {
	t.Helper()
	f, err := s.PutFragment(context.Background(), p)
	require.NoError(t, err)
	return f
}

func TestPutAndGetFragment(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f, err := s.PutFragment(ctx, PutParams{
		Source:   "journal.md",
		Title:    "Morning",
		Text:     "  I was uncertain about the trip.  ",
		Language: "en",
		Metadata: map[string]any{"thread": "travel", "day": 3},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "I was uncertain about the trip.", f.Text)

	got, err := s.GetFragment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, "journal.md", got.Source)
	assert.Equal(t, "Morning", got.Title)
	assert.Equal(t, "en", got.LanguageHint)
	assert.Equal(t, "travel", got.Metadata["thread"])
	assert.Equal(t, 3.0, got.Metadata["day"])
	assert.WithinDuration(t, f.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestPutFragmentKeepsGivenID(t *testing.T) {
	s := newTestStore(t)
	f := putFragment(t, s, PutParams{ID: "custom", Text: "text"})
	assert.Equal(t, "custom", f.ID)

	_, err := s.PutFragment(context.Background(), PutParams{ID: "custom", Text: "again"})
	assert.Error(t, err, "duplicate id")
}

func TestPutFragmentRequiresText(t *testing.T) {
	s := newTestStore(t)
	_, err := s.PutFragment(context.Background(), PutParams{Text: "   "})
	assert.Error(t, err)
}

func TestGetFragmentNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetFragment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndLatestScore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := putFragment(t, s, PutParams{Text: "as an AI assistant"})

	_, err := s.LatestScore(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &model.ScoreResult{
		Score:    0.25,
		Category: model.CategoryZombie,
		Contributions: []model.Contribution{
			{Analyzer: "red_flags", Delta: -0.15},
		},
		RedFlags: []string{"as an ai assistant"},
	}
	require.NoError(t, s.SaveScore(ctx, f.ID, first))

	second := &model.ScoreResult{Score: 0.4, Category: model.CategorySuspicious, Confidence: 0.6}
	require.NoError(t, s.SaveScore(ctx, f.ID, second))

	got, err := s.LatestScore(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.4, got.Score)
	assert.Equal(t, model.CategorySuspicious, got.Category)
	assert.Equal(t, 0.6, got.Confidence)
	assert.Equal(t, f.ID, got.FragmentID)
	assert.NotNil(t, got.ScoredAt)
}

func TestSaveScoreUnknownFragment(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveScore(context.Background(), "missing", &model.ScoreResult{Score: 0.5, Category: model.CategoryLikelyAuthentic})
	assert.Error(t, err, "foreign key should reject unknown fragment")
}

func TestDeleteFragmentCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := putFragment(t, s, PutParams{Text: "first fragment"})
	b := putFragment(t, s, PutParams{Text: "second fragment"})
	_, err := s.Link(ctx, LinkParams{FromID: b.ID, ToID: a.ID})
	require.NoError(t, err)
	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.5, Category: model.CategoryLikelyAuthentic}))

	require.NoError(t, s.DeleteFragment(ctx, a.ID))

	_, err = s.GetFragment(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestScore(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetFragment(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RelatedIDs)

	assert.ErrorIs(t, s.DeleteFragment(ctx, a.ID), ErrNotFound)
}

func TestDeleteSource(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := putFragment(t, s, PutParams{Source: "journal/a.md", Text: "first section"})
	putFragment(t, s, PutParams{Source: "journal/a.md", Text: "second section"})
	other := putFragment(t, s, PutParams{Source: "notes.txt", Text: "other document"})
	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.5, Category: model.CategoryLikelyAuthentic}))

	n, err := s.DeleteSource(ctx, "journal/a.md")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.LatestScore(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFragment(ctx, other.ID)
	assert.NoError(t, err)

	n, err = s.DeleteSource(ctx, "journal/a.md")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var id string
	err := s.WithTx(ctx, func(w Writer) error {
		f, err := w.PutFragment(ctx, PutParams{Source: "a.md", Text: "inside a transaction"})
		if err != nil {
			return err
		}
		id = f.ID
		return w.SaveScore(ctx, f.ID, &model.ScoreResult{Score: 0.4, Category: model.CategorySuspicious})
	})
	require.NoError(t, err)

	got, err := s.LatestScore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CategorySuspicious, got.Category)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	kept := putFragment(t, s, PutParams{Source: "a.md", Text: "already stored"})

	err := s.WithTx(ctx, func(w Writer) error {
		if _, err := w.DeleteSource(ctx, "a.md"); err != nil {
			return err
		}
		if _, err := w.PutFragment(ctx, PutParams{Source: "a.md", Text: "replacement"}); err != nil {
			return err
		}
		return w.SaveScore(ctx, "missing", &model.ScoreResult{Score: 0.5, Category: model.CategoryLikelyAuthentic})
	})
	require.Error(t, err)

	all, err := s.List(ctx, ListParams{Source: "a.md", Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := putFragment(t, s, PutParams{Source: "a.md", Text: "one"})
	b := putFragment(t, s, PutParams{Source: "a.md", Text: "two"})
	putFragment(t, s, PutParams{Source: "b.md", Text: "three"})

	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.1, Category: model.CategoryZombie}))
	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.8, Category: model.CategoryAuthentic}))
	require.NoError(t, s.SaveScore(ctx, b.ID, &model.ScoreResult{Score: 0.9, Category: model.CategoryAuthentic}))
	_, err := s.Link(ctx, LinkParams{FromID: a.ID, ToID: b.ID})
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "other.db")
	st, err := s.Stats(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalFragments)
	assert.Equal(t, 2, st.ScoredFragments)
	assert.Equal(t, 3, st.TotalScores)
	assert.Equal(t, 1, st.TotalLinks)
	assert.Equal(t, []CategoryStats{{Category: "AUTHENTIC", Count: 2}}, st.Categories)
	assert.Equal(t, []SourceStats{{Source: "a.md", Count: 2}, {Source: "b.md", Count: 1}}, st.Sources)
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	s.Close()

	_, err = os.Stat(dbPath)
	assert.False(t, os.IsNotExist(err), "expected db file to be created")
}
