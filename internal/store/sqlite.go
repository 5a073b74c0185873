package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// querier is the subset of *sql.DB and *sql.Tx the store queries through.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   querier
	conn *sql.DB // nil for a store bound to a transaction
	ids  *idSource
}

type idSource struct {
	mu      sync.Mutex
	entropy *rand.Rand
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		conn: db,
		ids:  &idSource{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.ids.mu.Lock()
	defer s.ids.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.ids.entropy).String()
}

// WithTx runs fn against a store bound to one transaction. The transaction
// commits when fn returns nil and is rolled back otherwise.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Writer) error) error {
	if s.conn == nil {
		return errors.New("nested transaction")
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLiteStore{db: tx, ids: s.ids}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL DEFAULT '',
		text        TEXT NOT NULL,
		language    TEXT NOT NULL DEFAULT '',
		metadata    TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fragments_source ON fragments(source);
	CREATE INDEX IF NOT EXISTS idx_fragments_created ON fragments(created_at DESC);

	CREATE TABLE IF NOT EXISTS fragment_links (
		from_id    TEXT NOT NULL REFERENCES fragments(id) ON DELETE CASCADE,
		to_id      TEXT NOT NULL REFERENCES fragments(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (from_id, to_id)
	);
	CREATE INDEX IF NOT EXISTS idx_links_to ON fragment_links(to_id);

	CREATE TABLE IF NOT EXISTS scores (
		id            TEXT PRIMARY KEY,
		fragment_id   TEXT NOT NULL REFERENCES fragments(id) ON DELETE CASCADE,
		score         REAL NOT NULL,
		category      TEXT NOT NULL,
		confidence    REAL NOT NULL,
		contributions TEXT NOT NULL,
		red_flags     TEXT,
		markers       TEXT,
		scored_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scores_fragment ON scores(fragment_id);
	CREATE INDEX IF NOT EXISTS idx_scores_category ON scores(category);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// PutFragment stores a new fragment.
func (s *SQLiteStore) PutFragment(ctx context.Context, p PutParams) (*model.Fragment, error) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil, fmt.Errorf("fragment text is required")
	}

	id := p.ID
	if id == "" {
		id = s.newID()
	}
	created := p.CreatedAt.UTC()
	if p.CreatedAt.IsZero() {
		created = time.Now().UTC()
	}

	var metaJSON *string
	if len(p.Metadata) > 0 {
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		m := string(b)
		metaJSON = &m
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fragments (id, source, title, text, language, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Source, p.Title, text, p.Language, metaJSON, created.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert fragment: %w", err)
	}

	return &model.Fragment{
		ID:           id,
		Text:         text,
		LanguageHint: p.Language,
		Metadata:     p.Metadata,
		Source:       p.Source,
		Title:        p.Title,
		CreatedAt:    created,
	}, nil
}

// GetFragment returns a fragment with its related IDs.
func (s *SQLiteStore) GetFragment(ctx context.Context, id string) (*model.Fragment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, title, text, language, metadata, created_at
		 FROM fragments WHERE id = ?`, id)
	f, err := scanFragment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fragment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	ids, err := s.relatedIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	f.RelatedIDs = ids
	return &f, nil
}

// DeleteFragment removes a fragment together with its relations and scores.
func (s *SQLiteStore) DeleteFragment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete fragment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("fragment %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSource removes every fragment ingested from source, with their
// relations and scores, and returns how many fragments were removed.
func (s *SQLiteStore) DeleteSource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("delete source: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFragment(row scanner) (model.Fragment, error) {
	var f model.Fragment
	var fc fragmentColumns
	if err := row.Scan(fc.dest(&f)...); err != nil {
		return f, err
	}
	fc.apply(&f)
	return f, nil
}

// fragmentColumns receives the fragment columns that need decoding.
type fragmentColumns struct {
	meta      sql.NullString
	createdAt string
}

func (c *fragmentColumns) dest(f *model.Fragment) []interface{} {
	return []interface{}{&f.ID, &f.Source, &f.Title, &f.Text, &f.LanguageHint, &c.meta, &c.createdAt}
}

func (c *fragmentColumns) apply(f *model.Fragment) {
	f.CreatedAt, _ = time.Parse(timeFormat, c.createdAt)
	if c.meta.Valid {
		json.Unmarshal([]byte(c.meta.String), &f.Metadata)
	}
}
