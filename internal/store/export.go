package store

import (
	"context"
	"fmt"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// ExportAll returns every fragment with its related IDs and latest score,
// optionally filtered by source, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context, source string) ([]model.ScoredFragment, error) {
	q := withScoreFilters(scoredSelect(), source, "", 0).OrderBy("f.created_at", "f.rowid")
	fragments, err := s.queryScored(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range fragments {
		ids, err := s.relatedIDs(ctx, fragments[i].ID)
		if err != nil {
			return nil, err
		}
		fragments[i].RelatedIDs = ids
	}
	return fragments, nil
}

// Import stores exported fragments, preserving IDs, relations and scores.
// Fragments whose ID already exists are skipped. Returns the number imported.
func (s *SQLiteStore) Import(ctx context.Context, fragments []model.ScoredFragment) (int, error) {
	imported := 0
	for _, f := range fragments {
		if f.ID != "" {
			if err := s.ensureFragment(ctx, f.ID); err == nil {
				continue
			}
		}
		stored, err := s.PutFragment(ctx, PutParams{
			ID:        f.ID,
			Source:    f.Source,
			Title:     f.Title,
			Text:      f.Text,
			Language:  f.LanguageHint,
			Metadata:  f.Metadata,
			CreatedAt: f.CreatedAt,
		})
		if err != nil {
			return imported, fmt.Errorf("import %s: %w", f.ID, err)
		}
		if f.Score != nil {
			if err := s.SaveScore(ctx, stored.ID, f.Score); err != nil {
				return imported, err
			}
		}
		imported++
	}

	// Relations last, so forward references resolve.
	for _, f := range fragments {
		if f.ID == "" {
			continue
		}
		for _, to := range f.RelatedIDs {
			if _, err := s.Link(ctx, LinkParams{FromID: f.ID, ToID: to}); err != nil {
				return imported, fmt.Errorf("import relation %s -> %s: %w", f.ID, to, err)
			}
		}
	}
	return imported, nil
}
