// File: cmd/catalog.go
package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/catalog"
	"github.com/xkilldash9x/vgrid/internal/config"
)

// openSource is replaced in tests.
var openSource = catalog.Open

// report is the loaded catalog, in section order.
type report struct {
	sections []string
	items    map[string][]catalog.Item
}

// title is the heading shown above a section's grid.
func (r report) title(section string) string {
	return fmt.Sprintf("%s (%d)", section, len(r.items[section]))
}

func loadReport(ctx context.Context, cfg config.Interface, logger *zap.Logger) (report, error) {
	src, err := openSource(ctx, cfg.Catalog(), logger)
	if err != nil {
		return report{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close catalog.", zap.Error(err))
		}
	}()

	sections, items, err := catalog.LoadAll(ctx, src)
	if err != nil {
		return report{}, err
	}
	total := 0
	for _, s := range sections {
		total += len(items[s])
	}
	logger.Info("Catalog loaded.",
		zap.String("driver", cfg.Catalog().Driver),
		zap.Int("sections", len(sections)),
		zap.Int("items", total))
	return report{sections: sections, items: items}, nil
}
