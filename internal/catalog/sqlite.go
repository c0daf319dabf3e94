// internal/catalog/sqlite.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite reads items from a SQLite database through the pure-Go driver.
type SQLite struct {
	db    *sql.DB
	table string
	log   *zap.Logger
}

var (
	_ Source = (*SQLite)(nil)
	_ Seeder = (*SQLite)(nil)
)

// OpenSQLite opens dsn and verifies the connection.
func OpenSQLite(ctx context.Context, dsn, table string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return NewSQLite(db, table, logger), nil
}

// NewSQLite wraps an open database handle. The source owns db from here on.
func NewSQLite(db *sql.DB, table string, logger *zap.Logger) *SQLite {
	return &SQLite{db: db, table: quoteIdent(table), log: logger.Named("catalog.sqlite")}
}

func (s *SQLite) Sections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, statement(sectionsSQL, s.table))
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

func (s *SQLite) Load(ctx context.Context, section string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, statement(loadSQL, s.table, "?"), section)
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
	s.log.Debug("Loaded section.", zap.String("section", section), zap.Int("items", len(items)))
	return items, nil
}

// Seed replaces the table contents with items, in one transaction.
func (s *SQLite) Seed(ctx context.Context, items []Item) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, statement(createTableSQL, s.table)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err = tx.ExecContext(ctx, statement(clearSQL, s.table)); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)", s.table, strings.Join(Columns, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		if _, err = stmt.ExecContext(ctx, it.Key, it.Title, it.Section, string(it.Status), i); err != nil {
			return fmt.Errorf("failed to insert %q: %w", it.Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Info("Seeded catalog.", zap.Int("items", len(items)))
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// quoteIdent double-quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
