package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/resellkit/research-core/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	item_id    TEXT NOT NULL,
	item       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'researching',
	error      TEXT,
	result     TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_item_id ON runs(item_id);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.ResearchRun) error {
	itemJSON, err := json.Marshal(run.Item)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal item")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, item_id, item, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Item.ID, string(itemJSON), string(run.Status), run.CreatedAt.UTC(), run.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *model.ResearchRun) error {
	var resultJSON sql.NullString
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal result")
		}
		resultJSON = sql.NullString{String: string(b), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(run.Status), nullString(run.Error), resultJSON, run.UpdatedAt.UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", run.ID)
	}
	return checkRowsAffected(res, "run", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ResearchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, item_id, item, status, error, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error) {
	query := `SELECT id, item_id, item, status, error, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ItemID != "" {
		query += ` AND item_id = ?`
		args = append(args, filter.ItemID)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ResearchRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveItems(ctx context.Context, items []model.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var n int64
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal item %s", item.ID)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
			item.ID, item.Name, string(data), now, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert item %s", item.ID)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit items")
	}
	return n, nil
}

func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM items WHERE id = ?`, itemID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("item not found: %s", itemID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get item %s", itemID)
	}

	var item model.Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal item")
	}
	return &item, nil
}

func (s *SQLiteStore) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM items ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list items")
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan item")
		}
		var item model.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal item")
		}
		items = append(items, item)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list items iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.ResearchRun, error) {
	var r model.ResearchRun
	var itemID, itemJSON string
	var errStr, resultJSON sql.NullString

	err := row.Scan(&r.ID, &itemID, &itemJSON, &r.Status, &errStr, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(itemJSON), &r.Item); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal item")
	}
	r.Error = errStr.String
	if resultJSON.Valid {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}
