package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/tierviz/pkg/chart"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
	id         TEXT PRIMARY KEY,
	scenario   TEXT NOT NULL DEFAULT '',
	mode       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	doc        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_layouts_scenario ON layouts(scenario, created_at DESC);
`

// SQLiteStore keeps layouts as JSON documents in a SQLite database,
// indexed by scenario and creation time.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create layouts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, l chart.Layout) error {
	if !validID(l.ID) {
		return ErrInvalidID
	}
	doc, err := chart.MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO layouts (id, scenario, mode, created_at, doc) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			scenario = excluded.scenario,
			mode = excluded.mode,
			created_at = excluded.created_at,
			doc = excluded.doc`,
		l.ID, l.Scenario, string(l.Mode), l.CreatedAt.UnixNano(), string(doc))
	if err != nil {
		return fmt.Errorf("save layout %s: %w", l.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (chart.Layout, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM layouts WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return chart.Layout{}, ErrNotFound
	}
	if err != nil {
		return chart.Layout{}, fmt.Errorf("get layout %s: %w", id, err)
	}
	return chart.UnmarshalLayout([]byte(doc))
}

func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]chart.Layout, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM layouts
		 WHERE (? = '' OR scenario = ?) AND (? = '' OR mode = ?)
		 ORDER BY created_at DESC, id ASC
		 LIMIT ?`,
		opts.Scenario, opts.Scenario, string(opts.Mode), string(opts.Mode), limit)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	out := []chart.Layout{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("list layouts: %w", err)
		}
		l, err := chart.UnmarshalLayout([]byte(doc))
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
