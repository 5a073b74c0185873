package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rcliao/memory-authenticity/internal/model"
)

const defaultLimit = 20

// scoredSelect joins every fragment with its most recent score, if any.
func scoredSelect() sq.SelectBuilder {
	return sq.Select(
		"f.id", "f.source", "f.title", "f.text", "f.language", "f.metadata", "f.created_at",
		"ls.score", "ls.category", "ls.confidence", "ls.contributions", "ls.red_flags", "ls.markers", "ls.scored_at",
	).
		From("fragments f").
		LeftJoin("scores ls ON ls.rowid = (SELECT MAX(s2.rowid) FROM scores s2 WHERE s2.fragment_id = f.id)")
}

func withScoreFilters(q sq.SelectBuilder, source, category string, minScore float64) sq.SelectBuilder {
	if source != "" {
		q = q.Where(sq.Eq{"f.source": source})
	}
	if category != "" {
		q = q.Where(sq.Eq{"ls.category": category})
	}
	if minScore > 0 {
		q = q.Where(sq.GtOrEq{"ls.score": minScore})
	}
	return q
}

func limitOrDefault(n int) uint64 {
	if n <= 0 {
		return defaultLimit
	}
	return uint64(n)
}

// List lists fragments with their latest score, newest first.
func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.ScoredFragment, error) {
	q := withScoreFilters(scoredSelect(), p.Source, p.Category, p.MinScore).
		OrderBy("f.created_at DESC", "f.rowid DESC").
		Limit(limitOrDefault(p.Limit))
	return s.queryScored(ctx, q)
}

// Search finds fragments whose text or title contains the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.ScoredFragment, error) {
	pattern := "%" + p.Query + "%"
	q := withScoreFilters(scoredSelect(), p.Source, p.Category, 0).
		Where(sq.Or{sq.Like{"f.text": pattern}, sq.Like{"f.title": pattern}}).
		OrderBy("f.created_at DESC", "f.rowid DESC").
		Limit(limitOrDefault(p.Limit))
	return s.queryScored(ctx, q)
}

func (s *SQLiteStore) queryScored(ctx context.Context, q sq.SelectBuilder) ([]model.ScoredFragment, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScoredFragment
	for rows.Next() {
		sf, err := scanScored(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, rows.Err()
}

func scanScored(rows scanner) (model.ScoredFragment, error) {
	var sf model.ScoredFragment
	var fc fragmentColumns
	var sc scoreColumns

	dest := append(fc.dest(&sf.Fragment), sc.dest()...)
	if err := rows.Scan(dest...); err != nil {
		return sf, err
	}
	fc.apply(&sf.Fragment)
	sf.Score = sc.result(sf.ID)
	return sf, nil
}
