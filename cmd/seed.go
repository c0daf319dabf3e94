// File: cmd/seed.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/catalog"
	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/observability"
)

func newSeedCmd() *cobra.Command {
	counts := map[string]*int{
		catalog.SectionChanged: new(int),
		catalog.SectionNew:     new(int),
		catalog.SectionPassed:  new(int),
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a sqlite or postgres catalog with the demo report",
		Long: `Generates the synthetic demo sections and writes them to the configured
catalog, replacing what is there. Use --catalog and --dsn, or the config
file, to pick the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			n := make(map[string]int, len(counts))
			for section, c := range counts {
				if *c < 0 {
					return fmt.Errorf("section %q: count must not be negative", section)
				}
				n[section] = *c
			}
			if err := runSeed(ctx, cfg, n, observability.GetLogger()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s catalog.\n", cfg.Catalog().Driver)
			return nil
		},
	}

	f := seedCmd.Flags()
	f.IntVar(counts[catalog.SectionChanged], "changed", 3, "number of items in the Changed section")
	f.IntVar(counts[catalog.SectionNew], "new", 20, "number of items in the New section")
	f.IntVar(counts[catalog.SectionPassed], "passed", 1500, "number of items in the Passed section")
	return seedCmd
}

func runSeed(ctx context.Context, cfg config.Interface, counts map[string]int, logger *zap.Logger) error {
	src, err := openSource(ctx, cfg.Catalog(), logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close catalog.", zap.Error(err))
		}
	}()

	seeder, ok := src.(catalog.Seeder)
	if !ok {
		return fmt.Errorf("the %s catalog cannot be seeded", cfg.Catalog().Driver)
	}
	items := catalog.NewSyntheticWith(counts).All()
	if err := seeder.Seed(ctx, items); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}
