package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dronedex/directory-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS companies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	website     TEXT,
	email       TEXT,
	phone       TEXT,
	address     TEXT,
	category    TEXT,
	description TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_companies_website ON companies(website);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_category ON companies(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, e *model.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, website, email, phone, address, category, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Website, e.Email, e.Phone, e.Address, e.Category, e.Description, now, now,
	)
	return eris.Wrapf(err, "sqlite: insert company %s", e.Name)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", id)
	}
	return e, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE name LIKE ? OR category LIKE ? OR description LIKE ?
		 ORDER BY created_at DESC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: search %q", query)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete company %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) Exists(ctx context.Context, website, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies
		 WHERE (? != '' AND website = ?) OR (? != '' AND lower(name) LIKE '%' || lower(?) || '%')`,
		website, website, name, name,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: exists")
	}
	return count > 0, nil
}

func (s *SQLiteStore) RenameWebsite(ctx context.Context, id, website string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET website = ?, updated_at = ? WHERE id = ?`,
		website, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: rename website %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

// ApplyCleanup runs all deletes and renames of a plan in one transaction and
// returns the number of deleted rows.
func (s *SQLiteStore) ApplyCleanup(ctx context.Context, plan model.CleanupPlan) (int, error) {
	if plan.Empty() {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin cleanup")
	}
	defer tx.Rollback()

	deleted := 0
	for _, id := range plan.DeleteIDs {
		res, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: cleanup delete %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		deleted += int(n)
	}

	now := time.Now().UTC()
	for id, website := range plan.Renames {
		if _, err := tx.ExecContext(ctx,
			`UPDATE companies SET website = ?, updated_at = ? WHERE id = ?`,
			website, now, id,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: cleanup rename %s", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit cleanup")
	}
	return deleted, nil
}

// helpers

const selectColumns = `SELECT id, name, website, email, phone, address, category, description, created_at, updated_at FROM companies`

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

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (*model.Entry, error) {
	var e model.Entry
	var website, email, phone, address, category, description sql.NullString

	err := row.Scan(&e.ID, &e.Name, &website, &email, &phone, &address, &category, &description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.Website = website.String
	e.Email = email.String
	e.Phone = phone.String
	e.Address = address.String
	e.Category = category.String
	e.Description = description.String
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate companies")
}
