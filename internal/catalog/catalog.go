// internal/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/config"
)

var (
	ErrUnknownDriver  = errors.New("unknown catalog driver")
	ErrUnknownSection = errors.New("unknown section")
)

// Status is the outcome an item reports.
type Status string

const (
	StatusFailed Status = "failed"
	StatusNew    Status = "new"
	StatusPassed Status = "passed"
)

// Item is one cell of a report grid. Key doubles as its anchor token.
type Item struct {
	Key     string
	Title   string
	Section string
	Status  Status
}

// ItemKey extracts the anchor token; it is the key function every grid uses.
func ItemKey(it Item) string { return it.Key }

// Source lists the sections of a report and loads the items of each one,
// in display order.
type Source interface {
	Sections(ctx context.Context) ([]string, error)
	Load(ctx context.Context, section string) ([]Item, error)
	Close() error
}

// Seeder is implemented by sources that can be populated.
type Seeder interface {
	Seed(ctx context.Context, items []Item) error
}

// Open returns the source selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (Source, error) {
	switch cfg.Driver {
	case "synthetic", "":
		return NewSynthetic(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN, cfg.Table, logger)
	case "postgres":
		return OpenPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// LoadAll loads every section in order.
func LoadAll(ctx context.Context, src Source) (sections []string, items map[string][]Item, err error) {
	sections, err = src.Sections(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing sections: %w", err)
	}
	items = make(map[string][]Item, len(sections))
	for _, s := range sections {
		loaded, err := src.Load(ctx, s)
		if err != nil {
			return nil, nil, fmt.Errorf("loading section %q: %w", s, err)
		}
		items[s] = loaded
	}
	return sections, items, nil
}
