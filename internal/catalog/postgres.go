// internal/catalog/postgres.go
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/config"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Postgres reads items from a PostgreSQL table.
type Postgres struct {
	pool    DBPool
	table   string
	ident   pgx.Identifier
	log     *zap.Logger
	closeFn func()
}

var (
	_ Source = (*Postgres)(nil)
	_ Seeder = (*Postgres)(nil)
)

// OpenPostgres creates a connection pool from cfg and verifies it.
func OpenPostgres(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	p, err := NewPostgres(ctx, pool, cfg.Table, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.closeFn = pool.Close
	return p, nil
}

// NewPostgres wraps a pool and verifies the connection. The caller keeps
// ownership of the pool.
func NewPostgres(ctx context.Context, pool DBPool, table string, logger *zap.Logger) (*Postgres, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	ident := pgx.Identifier{table}
	return &Postgres{
		pool:  pool,
		table: ident.Sanitize(),
		ident: ident,
		log:   logger.Named("catalog.postgres"),
	}, nil
}

func (p *Postgres) Sections(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, statement(sectionsSQL, p.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, name)
	}
	return sections, rows.Err()
}

func (p *Postgres) Load(ctx context.Context, section string) ([]Item, error) {
	rows, err := p.pool.Query(ctx, statement(loadSQL, p.table, "$1"), section)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var status string
		if err := rows.Scan(&it.Key, &it.Title, &it.Section, &status); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Status = Status(status)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	p.log.Debug("Loaded section.", zap.String("section", section), zap.Int("items", len(items)))
	return items, nil
}

// Seed creates the table if needed and bulk-loads items with COPY.
func (p *Postgres) Seed(ctx context.Context, items []Item) error {
	if _, err := p.pool.Exec(ctx, statement(createTableSQL, p.table)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := p.pool.Exec(ctx, statement(clearSQL, p.table)); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	n, err := p.pool.CopyFrom(ctx, p.ident, Columns, pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		it := items[i]
		return []any{it.Key, it.Title, it.Section, string(it.Status), i}, nil
	}))
	if err != nil {
		return fmt.Errorf("failed to copy items: %w", err)
	}
	p.log.Info("Seeded catalog.", zap.Int64("items", n))
	return nil
}

// Close releases the pool when the source created it.
func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}
