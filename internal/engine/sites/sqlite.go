package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

const sqliteSelect = `SELECT key, name, api, active FROM sites`

// SQLiteStore keeps the registry in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is ~/.go_vod/sites.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_vod", "sites.db")
}

// OpenSQLite opens (or creates) the database at path. Empty path means DefaultSQLitePath.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sites: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sites: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	schema, err := schemaFS.ReadFile("schema/sqlite.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sites: read schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sites: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() { _ = s.db.Close() }

func (s *SQLiteStore) ListActive(ctx context.Context) ([]engine.Provider, error) {
	return s.query(ctx, sqliteSelect+` WHERE active = 1 ORDER BY position, created_at, key`)
}

func (s *SQLiteStore) List(ctx context.Context) ([]engine.Provider, error) {
	return s.query(ctx, sqliteSelect+` ORDER BY position, created_at, key`)
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (engine.Provider, bool, error) {
	p, err := scanProvider(s.db.QueryRowContext(ctx, sqliteSelect+` WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Provider{}, false, nil
	}
	if err != nil {
		return engine.Provider{}, false, fmt.Errorf("get site %q: %w", key, err)
	}
	return p, true, nil
}

func (s *SQLiteStore) query(ctx context.Context, q string) ([]engine.Provider, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	out := []engine.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sites: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProvider(row scanner) (engine.Provider, error) {
	var p engine.Provider
	var active int64
	if err := row.Scan(&p.Key, &p.Name, &p.API, &active); err != nil {
		return engine.Provider{}, err
	}
	p.Active = active != 0
	return p, nil
}

// Replace swaps the site list in a single transaction.
func (s *SQLiteStore) Replace(ctx context.Context, list []engine.Provider) (err error) {
	if err := Validate(list); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sites`); err != nil {
		return fmt.Errorf("clear sites: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i, p := range list {
		active := 0
		if p.Active {
			active = 1
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sites (key, name, api, active, position, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.Key, p.Name, p.API, active, i, now,
		); err != nil {
			return fmt.Errorf("insert site %q: %w", p.Key, err)
		}
	}
	return tx.Commit()
}
