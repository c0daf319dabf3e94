// File: cmd/browse.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/vgrid/internal/catalog"
	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/observability"
	"github.com/xkilldash9x/vgrid/internal/terminal"
	"github.com/xkilldash9x/vgrid/internal/vgrid/anchor"
	"github.com/xkilldash9x/vgrid/internal/vgrid/grid"
	"github.com/xkilldash9x/vgrid/internal/vgrid/scheduler"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

// newScreen is replaced in tests with a simulation screen.
var newScreen = tcell.NewScreen

func newBrowseCmd() *cobra.Command {
	var anchorKey string

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog as full-screen terminal grids",
		Long: `Opens every catalog section as a grid in the terminal. Scroll with the
arrow keys, j/k, PgUp/PgDn or the mouse wheel. Press # to jump to an item
key and q to quit.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationFullScreen: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			screen, err := newScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			return runBrowse(ctx, cfg, screen, anchorKey, observability.GetLogger())
		},
	}

	browseCmd.Flags().StringVarP(&anchorKey, "anchor", "a", "", "item key to land on at startup")
	return browseCmd
}

// runBrowse mounts one grid per section on a terminal host and runs the event
// loop and the host until the user quits or ctx is cancelled.
func runBrowse(ctx context.Context, cfg config.Interface, screen tcell.Screen, anchorKey string, logger *zap.Logger) error {
	rep, err := loadReport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	tcfg := cfg.Terminal()
	rules, err := config.ParseRules(tcfg.Rules)
	if err != nil {
		return fmt.Errorf("invalid terminal rules: %w", err)
	}

	loop := scheduler.NewLoop(logger, cfg.Grid().FrameRate)
	host := terminal.NewHost(screen, tcfg, anchorKey, logger)
	grids, err := mountGrids(rep, func(section string) (grid.Options[catalog.Item, terminal.Cell], surface.Surface, surface.Painter[terminal.Cell]) {
		s := host.AddSection(rep.title(section))
		return grid.Options[catalog.Item, terminal.Cell]{
			Render:     terminal.RenderItem,
			CellHeight: tcfg.CellHeight,
			Rules:      rules,
		}, s, s
	}, cfg.Grid(), loop, logger)
	if err != nil {
		return err
	}
	defer teardown(grids)

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.EnableMouse()
	w, h := screen.Size()
	host.HandleEvent(tcell.NewEventResize(w, h))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return loop.Run(egCtx) })
	eg.Go(func() error { return host.Run(egCtx) })

	err = eg.Wait()
	if errors.Is(err, terminal.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// mountGrids builds one grid per section, all sharing one landing session.
// target adds the section to its host and returns the host-specific options
// together with the surface and painter to mount on.
func mountGrids[R any](
	rep report,
	target func(section string) (grid.Options[catalog.Item, R], surface.Surface, surface.Painter[R]),
	gcfg config.GridConfig,
	sched scheduler.Scheduler,
	logger *zap.Logger,
) ([]*grid.Grid[catalog.Item, R], error) {
	session := anchor.NewSession()
	grids := make([]*grid.Grid[catalog.Item, R], 0, len(rep.sections))
	for _, section := range rep.sections {
		opts, surf, painter := target(section)
		opts.Name = section
		opts.Items = rep.items[section]
		opts.Key = catalog.ItemKey
		opts.Session = session
		opts.Scheduler = sched
		opts.Logger = logger
		opts.LandingDelay = gcfg.LandingDelay
		opts.OnError = func(err error) {
			logger.Error("Grid halted.", zap.String("section", section), zap.Error(err))
		}

		g, err := grid.New(opts)
		if err != nil {
			teardown(grids)
			return nil, fmt.Errorf("section %q: %w", section, err)
		}
		if err := g.Mount(surf, painter); err != nil {
			teardown(grids)
			return nil, fmt.Errorf("section %q: %w", section, err)
		}
		grids = append(grids, g)
	}
	return grids, nil
}

func teardown[R any](grids []*grid.Grid[catalog.Item, R]) {
	for _, g := range grids {
		g.Teardown()
	}
}
