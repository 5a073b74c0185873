package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string          `json:"db_path"`
	DBSizeBytes     int64           `json:"db_size_bytes"`
	TotalFragments  int             `json:"total_fragments"`
	ScoredFragments int             `json:"scored_fragments"`
	TotalScores     int             `json:"total_scores"`
	TotalLinks      int             `json:"total_links"`
	Categories      []CategoryStats `json:"categories"`
	Sources         []SourceStats   `json:"sources"`
}

// CategoryStats counts fragments by the category of their latest score.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SourceStats counts fragments per source document.
type SourceStats struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&st.TotalFragments)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT fragment_id) FROM scores`).Scan(&st.ScoredFragments)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&st.TotalScores)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragment_links`).Scan(&st.TotalLinks)

	rows, err := s.db.QueryContext(ctx, `
		SELECT ls.category, COUNT(*) AS cnt
		FROM scores ls
		WHERE ls.rowid IN (SELECT MAX(rowid) FROM scores GROUP BY fragment_id)
		GROUP BY ls.category ORDER BY cnt DESC, ls.category`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var c CategoryStats
		rows.Scan(&c.Category, &c.Count)
		st.Categories = append(st.Categories, c)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT source, COUNT(*) AS cnt FROM fragments
		GROUP BY source ORDER BY cnt DESC, source`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var src SourceStats
		rows.Scan(&src.Source, &src.Count)
		st.Sources = append(st.Sources, src)
	}

	return st, nil
}
