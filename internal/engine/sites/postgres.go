package sites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

const pgSelect = `SELECT key, name, api, active FROM sites`

// PostgresStore keeps the registry in a Postgres "sites" table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and bootstraps the schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("sites postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) migrate(ctx context.Context) error {
	data, err := schemaFS.ReadFile("schema/postgres.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]engine.Provider, error) {
	return s.query(ctx, pgSelect+` WHERE active ORDER BY position, created_at, key`)
}

func (s *PostgresStore) List(ctx context.Context) ([]engine.Provider, error) {
	return s.query(ctx, pgSelect+` ORDER BY position, created_at, key`)
}

func (s *PostgresStore) Get(ctx context.Context, key string) (engine.Provider, bool, error) {
	rows, err := s.pool.Query(ctx, pgSelect+` WHERE key = $1`, key)
	if err != nil {
		return engine.Provider{}, false, fmt.Errorf("get site %q: %w", key, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[engine.Provider])
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Provider{}, false, nil
	}
	if err != nil {
		return engine.Provider{}, false, fmt.Errorf("get site %q: %w", key, err)
	}
	return p, true, nil
}

func (s *PostgresStore) query(ctx context.Context, sql string) ([]engine.Provider, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[engine.Provider])
	if err != nil {
		return nil, fmt.Errorf("scan sites: %w", err)
	}
	return out, nil
}

// Replace deletes every row and copies the new list in within one transaction.
func (s *PostgresStore) Replace(ctx context.Context, list []engine.Provider) error {
	if err := Validate(list); err != nil {
		return err
	}
	rows := make([][]any, len(list))
	for i, p := range list {
		rows[i] = []any{p.Key, p.Name, p.API, p.Active, i}
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sites`); err != nil {
			return fmt.Errorf("clear sites: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sites"},
			[]string{"key", "name", "api", "active", "position"}, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("insert sites: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("sites replaced", slog.Int("count", len(list)))
	return nil
}
