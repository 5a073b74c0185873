// Package store persists memory fragments, their relations and their scores in SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// ErrNotFound is returned when a fragment or score does not exist.
var ErrNotFound = errors.New("not found")

// PutParams holds parameters for storing a fragment.
type PutParams struct {
	ID        string // assigned when empty
	Source    string
	Title     string
	Text      string
	Language  string
	Metadata  map[string]any
	CreatedAt time.Time // now when zero
}

// ListParams holds parameters for listing fragments with their latest score.
type ListParams struct {
	Source   string
	Category string
	MinScore float64
	Limit    int
}

// SearchParams holds parameters for substring search over fragments.
type SearchParams struct {
	Query    string
	Source   string
	Category string
	Limit    int
}

// Writer is the write side of the store, available inside a transaction.
type Writer interface {
	PutFragment(ctx context.Context, p PutParams) (*model.Fragment, error)
	Link(ctx context.Context, p LinkParams) (*Link, error)
	SaveScore(ctx context.Context, fragmentID string, r *model.ScoreResult) error

	// DeleteSource removes every fragment of a source document.
	DeleteSource(ctx context.Context, source string) (int, error)
}

// Store defines the fragment storage interface.
type Store interface {
	// PutFragment stores a new fragment and returns it with its ID assigned.
	PutFragment(ctx context.Context, p PutParams) (*model.Fragment, error)

	// GetFragment returns a fragment with its related IDs populated.
	GetFragment(ctx context.Context, id string) (*model.Fragment, error)

	// DeleteFragment removes a fragment with its relations and scores.
	DeleteFragment(ctx context.Context, id string) error

	// DeleteSource removes every fragment of a source document.
	DeleteSource(ctx context.Context, source string) (int, error)

	// WithTx runs fn in a transaction, committing only when fn returns nil.
	WithTx(ctx context.Context, fn func(Writer) error) error

	// Link declares that from relates to to.
	Link(ctx context.Context, p LinkParams) (*Link, error)

	// Related returns the fragments a fragment declares as related, in declaration order.
	Related(ctx context.Context, id string) ([]model.Fragment, error)

	// SaveScore records a score for a fragment.
	SaveScore(ctx context.Context, fragmentID string, r *model.ScoreResult) error

	// LatestScore returns the most recent score of a fragment.
	LatestScore(ctx context.Context, fragmentID string) (*model.ScoreResult, error)

	// List lists fragments with their latest score, newest first.
	List(ctx context.Context, p ListParams) ([]model.ScoredFragment, error)

	// Search finds fragments whose text or title contains the query.
	Search(ctx context.Context, p SearchParams) ([]model.ScoredFragment, error)

	// Close closes the store.
	Close() error
}
