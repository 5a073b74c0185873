package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// SaveScore records a score for a fragment. Earlier scores are kept; the
// newest one is reported by LatestScore and List.
func (s *SQLiteStore) SaveScore(ctx context.Context, fragmentID string, r *model.ScoreResult) error {
	if r == nil {
		return fmt.Errorf("nil score result")
	}
	contributions, err := json.Marshal(r.Contributions)
	if err != nil {
		return fmt.Errorf("encode contributions: %w", err)
	}
	redFlags, _ := json.Marshal(r.RedFlags)
	markers, _ := json.Marshal(r.Markers)

	scoredAt := time.Now().UTC()
	if r.ScoredAt != nil {
		scoredAt = r.ScoredAt.UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scores (id, fragment_id, score, category, confidence, contributions, red_flags, markers, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.newID(), fragmentID, r.Score, string(r.Category), r.Confidence,
		string(contributions), string(redFlags), string(markers), scoredAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// LatestScore returns the most recently saved score of a fragment.
func (s *SQLiteStore) LatestScore(ctx context.Context, fragmentID string) (*model.ScoreResult, error) {
	var sc scoreColumns
	err := s.db.QueryRowContext(ctx,
		`SELECT score, category, confidence, contributions, red_flags, markers, scored_at
		 FROM scores WHERE fragment_id = ? ORDER BY rowid DESC LIMIT 1`, fragmentID).
		Scan(sc.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score for %s: %w", fragmentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return sc.result(fragmentID), nil
}

// scoreColumns receives a possibly-absent score row.
type scoreColumns struct {
	score         sql.NullFloat64
	category      sql.NullString
	confidence    sql.NullFloat64
	contributions sql.NullString
	redFlags      sql.NullString
	markers       sql.NullString
	scoredAt      sql.NullString
}

func (c *scoreColumns) dest() []interface{} {
	return []interface{}{&c.score, &c.category, &c.confidence, &c.contributions, &c.redFlags, &c.markers, &c.scoredAt}
}

// result returns nil when the row had no score.
func (c *scoreColumns) result(fragmentID string) *model.ScoreResult {
	if !c.score.Valid {
		return nil
	}
	r := &model.ScoreResult{
		FragmentID: fragmentID,
		Score:      c.score.Float64,
		Category:   model.Category(c.category.String),
		Confidence: c.confidence.Float64,
	}
	if c.contributions.Valid {
		json.Unmarshal([]byte(c.contributions.String), &r.Contributions)
	}
	if c.redFlags.Valid {
		json.Unmarshal([]byte(c.redFlags.String), &r.RedFlags)
	}
	if c.markers.Valid {
		json.Unmarshal([]byte(c.markers.String), &r.Markers)
	}
	if c.scoredAt.Valid {
		if t, err := time.Parse(timeFormat, c.scoredAt.String); err == nil {
			r.ScoredAt = &t
		}
	}
	return r
}
