package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// LinkParams holds parameters for creating or removing a relation.
type LinkParams struct {
	FromID string
	ToID   string
	Remove bool
}

// Link is a declared relation from one fragment to another.
type Link struct {
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Seq       int    `json:"seq"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Link creates or removes a relation. Relations keep declaration order.
func (s *SQLiteStore) Link(ctx context.Context, p LinkParams) (*Link, error) {
	if p.FromID == p.ToID {
		return nil, fmt.Errorf("fragment %s cannot relate to itself", p.FromID)
	}
	if err := s.ensureFragment(ctx, p.FromID); err != nil {
		return nil, fmt.Errorf("resolve from: %w", err)
	}
	if err := s.ensureFragment(ctx, p.ToID); err != nil {
		return nil, fmt.Errorf("resolve to: %w", err)
	}

	if p.Remove {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM fragment_links WHERE from_id = ? AND to_id = ?`, p.FromID, p.ToID)
		if err != nil {
			return nil, err
		}
		return &Link{FromID: p.FromID, ToID: p.ToID}, nil
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO fragment_links (from_id, to_id, seq, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM fragment_links WHERE from_id = ?), ?)`,
		p.FromID, p.ToID, p.FromID, now)
	if err != nil {
		return nil, err
	}

	var l Link
	err = s.db.QueryRowContext(ctx,
		`SELECT from_id, to_id, seq, created_at FROM fragment_links WHERE from_id = ? AND to_id = ?`,
		p.FromID, p.ToID).Scan(&l.FromID, &l.ToID, &l.Seq, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLinks returns all links touching a fragment.
func (s *SQLiteStore) GetLinks(ctx context.Context, id string) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_id, to_id, seq, created_at FROM fragment_links
		 WHERE from_id = ? OR to_id = ? ORDER BY from_id, seq`, id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.FromID, &l.ToID, &l.Seq, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Related returns the fragments id declares as related, in declaration order.
func (s *SQLiteStore) Related(ctx context.Context, id string) ([]model.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.source, f.title, f.text, f.language, f.metadata, f.created_at
		 FROM fragment_links l JOIN fragments f ON f.id = l.to_id
		 WHERE l.from_id = ? ORDER BY l.seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []model.Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

func (s *SQLiteStore) relatedIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_id FROM fragment_links WHERE from_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var to string
		if err := rows.Scan(&to); err != nil {
			return nil, err
		}
		ids = append(ids, to)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) ensureFragment(ctx context.Context, id string) error {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM fragments WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("fragment %s: %w", id, ErrNotFound)
	}
	return err
}
