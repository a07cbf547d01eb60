package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/resellkit/research-core/internal/db"
	"github.com/resellkit/research-core/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run": `INSERT INTO runs (id, item_id, item, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_run": `UPDATE runs SET status = $1, error = $2, result = $3, updated_at = $4 WHERE id = $5`,
	"get_run":    `SELECT id, item_id, item, status, error, result, created_at, updated_at FROM runs WHERE id = $1`,
	"get_item":   `SELECT data FROM items WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	item_id    TEXT NOT NULL,
	item       JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'researching',
	error      TEXT,
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_item_id ON runs(item_id);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *model.ResearchRun) error {
	itemJSON, err := json.Marshal(run.Item)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal item")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, item_id, item, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Item.ID, itemJSON, string(run.Status), run.CreatedAt.UTC(), run.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert run %s", run.ID)
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *model.ResearchRun) error {
	var resultJSON []byte
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal result")
		}
		resultJSON = b
	}

	var errVal *string
	if run.Error != "" {
		errVal = &run.Error
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, result = $3, updated_at = $4 WHERE id = $5`,
		string(run.Status), errVal, resultJSON, run.UpdatedAt.UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ResearchRun, error) {
	var r model.ResearchRun
	var itemID string
	var itemJSON []byte
	var errNull *string
	var resultNull *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, item_id, item, status, error, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &itemID, &itemJSON, &r.Status, &errNull, &resultNull, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(itemJSON, &r.Item); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal item")
	}
	if errNull != nil {
		r.Error = *errNull
	}
	if resultNull != nil {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(*resultNull, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error) {
	query := `SELECT id, item_id, item, status, error, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.ItemID != "" {
		query += fmt.Sprintf(` AND item_id = $%d`, argIdx)
		args = append(args, filter.ItemID)
		argIdx++
	}
	if !filter.CreatedAfter.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, argIdx)
		args = append(args, filter.CreatedAfter.UTC())
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ResearchRun
	for rows.Next() {
		var r model.ResearchRun
		var itemID string
		var itemJSON []byte
		var errNull *string
		var resultNull *[]byte

		if err := rows.Scan(&r.ID, &itemID, &itemJSON, &r.Status, &errNull, &resultNull, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(itemJSON, &r.Item); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal item")
		}
		if errNull != nil {
			r.Error = *errNull
		}
		if resultNull != nil {
			r.Result = &model.RunResult{}
			if err := json.Unmarshal(*resultNull, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveItems bulk-upserts intake items through a temp table COPY, which
// keeps large manifest imports to a single round trip per batch.
func (s *PostgresStore) SaveItems(ctx context.Context, items []model.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal item %s", item.ID)
		}
		rows = append(rows, []any{item.ID, item.Name, data, now, now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "items",
		Columns:      []string{"id", "name", "data", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"name", "data", "updated_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save items")
	}
	return n, nil
}

func (s *PostgresStore) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM items WHERE id = $1`, itemID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("item not found: %s", itemID)
		}
		return nil, eris.Wrapf(err, "postgres: get item %s", itemID)
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal item")
	}
	return &item, nil
}

func (s *PostgresStore) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM items ORDER BY created_at DESC, id LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list items")
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan item")
		}
		var item model.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal item")
		}
		items = append(items, item)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list items iterate")
}
