package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/memory-authenticity/internal/model"
)

func seedScored(t *testing.T, s *SQLiteStore) (a, b, c *model.Fragment) {
	t.Helper()
	ctx := context.Background()
	a = putFragment(t, s, PutParams{Source: "journal.md", Title: "Harbor", Text: "I felt lost at the harbor"})
	b = putFragment(t, s, PutParams{Source: "journal.md", Title: "Report", Text: "As an AI assistant I summarize"})
	c = putFragment(t, s, PutParams{Source: "notes.txt", Text: "Grocery list"})

	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.2, Category: model.CategoryZombie}))
	require.NoError(t, s.SaveScore(ctx, a.ID, &model.ScoreResult{Score: 0.76, Category: model.CategoryAuthentic}))
	require.NoError(t, s.SaveScore(ctx, b.ID, &model.ScoreResult{Score: 0.25, Category: model.CategoryZombie}))
	return a, b, c
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, b, c := seedScored(t, s)

	all, err := s.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, c.ID, all[0].ID, "newest first")
	assert.Nil(t, all[0].Score)

	bySource, err := s.List(ctx, ListParams{Source: "journal.md"})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	zombies, err := s.List(ctx, ListParams{Category: string(model.CategoryZombie)})
	require.NoError(t, err)
	require.Len(t, zombies, 1, "only the latest score counts")
	assert.Equal(t, b.ID, zombies[0].ID)

	high, err := s.List(ctx, ListParams{MinScore: 0.7})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, a.ID, high[0].ID)
	assert.Equal(t, 0.76, high[0].Score.Score)

	limited, err := s.List(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, _, _ := seedScored(t, s)

	res, err := s.Search(ctx, SearchParams{Query: "harbor"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, a.ID, res[0].ID)
	assert.Equal(t, model.CategoryAuthentic, res[0].Score.Category)

	res, err = s.Search(ctx, SearchParams{Query: "Report"})
	require.NoError(t, err)
	assert.Len(t, res, 1, "title matches")

	res, err = s.Search(ctx, SearchParams{Query: "list", Source: "journal.md"})
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = s.Search(ctx, SearchParams{Query: "I", Category: string(model.CategoryZombie)})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	a, b, _ := seedScored(t, src)
	_, err := src.Link(ctx, LinkParams{FromID: a.ID, ToID: b.ID})
	require.NoError(t, err)

	exported, err := src.ExportAll(ctx, "journal.md")
	require.NoError(t, err)
	require.Len(t, exported, 2)
	assert.Equal(t, a.ID, exported[0].ID, "oldest first")
	assert.Equal(t, []string{b.ID}, exported[0].RelatedIDs)

	dst := newTestStore(t)
	n, err := dst.Import(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.GetFragment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.RelatedIDs)

	score, err := dst.LatestScore(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.76, score.Score)

	n, err = dst.Import(ctx, exported)
	require.NoError(t, err)
	assert.Zero(t, n, "existing fragments are skipped")
}
