package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dronedex/directory-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Satisfied by
// pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used in tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name        TEXT NOT NULL,
	website     TEXT,
	email       TEXT,
	phone       TEXT,
	address     TEXT,
	category    TEXT,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_website ON companies(website);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_category ON companies(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Insert(ctx context.Context, e *model.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, website, email, phone, address, category, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.Name, e.Website, e.Email, e.Phone, e.Address, e.Category, e.Description, now, now,
	)
	return eris.Wrapf(err, "postgres: insert company %s", e.Name)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.pool.QueryRow(ctx, pgSelectColumns+` WHERE id = $1`, id)
	e, err := scanPgEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", id)
	}
	return e, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.pool.Query(ctx, pgSelectColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()
	return collectPgEntries(rows)
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + query + "%"
	rows, err := s.pool.Query(ctx,
		pgSelectColumns+` WHERE name ILIKE $1 OR category ILIKE $1 OR description ILIKE $1
		 ORDER BY created_at DESC LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: search %q", query)
	}
	defer rows.Close()
	return collectPgEntries(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete company %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, website, name string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies
		 WHERE ($1 != '' AND website = $1) OR ($2 != '' AND name ILIKE '%' || $2 || '%')`,
		website, name,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "postgres: exists")
	}
	return count > 0, nil
}

func (s *PostgresStore) RenameWebsite(ctx context.Context, id, website string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET website = $1, updated_at = $2 WHERE id = $3`,
		website, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: rename website %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

// ApplyCleanup runs all deletes and renames of a plan in one transaction and
// returns the number of deleted rows.
func (s *PostgresStore) ApplyCleanup(ctx context.Context, plan model.CleanupPlan) (int, error) {
	if plan.Empty() {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin cleanup")
	}
	defer tx.Rollback(ctx)

	deleted := 0
	for _, id := range plan.DeleteIDs {
		tag, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: cleanup delete %s", id)
		}
		deleted += int(tag.RowsAffected())
	}

	now := time.Now().UTC()
	for id, website := range plan.Renames {
		if _, err := tx.Exec(ctx,
			`UPDATE companies SET website = $1, updated_at = $2 WHERE id = $3`,
			website, now, id,
		); err != nil {
			return 0, eris.Wrapf(err, "postgres: cleanup rename %s", id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit cleanup")
	}
	return deleted, nil
}

// helpers

const pgSelectColumns = `SELECT id, name, website, email, phone, address, category, description, created_at, updated_at FROM companies`

func scanPgEntry(row pgx.Row) (*model.Entry, error) {
	var e model.Entry
	var website, email, phone, address, category, description *string

	err := row.Scan(&e.ID, &e.Name, &website, &email, &phone, &address, &category, &description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for dst, src := range map[*string]*string{
		&e.Website:     website,
		&e.Email:       email,
		&e.Phone:       phone,
		&e.Address:     address,
		&e.Category:    category,
		&e.Description: description,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return &e, nil
}

func collectPgEntries(rows pgx.Rows) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		e, err := scanPgEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate companies")
}
