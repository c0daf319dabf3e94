// File: cmd/chrome.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/vgrid/internal/browser"
	"github.com/xkilldash9x/vgrid/internal/catalog"
	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/observability"
	"github.com/xkilldash9x/vgrid/internal/vgrid/grid"
	"github.com/xkilldash9x/vgrid/internal/vgrid/scheduler"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

const pageTitle = "vgrid report"

func newChromeCmd() *cobra.Command {
	var (
		anchorKey string
		headless  bool
	)

	chromeCmd := &cobra.Command{
		Use:   "chrome",
		Short: "Render the catalog as grids in a Chrome window",
		Long: `Launches Chrome through the DevTools protocol and renders every catalog
section as a grid on one page. Scrolling, resizing and hash changes in the
page drive the grids; close the window or press Ctrl-C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(headless)
			}
			return runChrome(ctx, cfg, anchorKey, observability.GetLogger())
		},
	}

	chromeCmd.Flags().StringVarP(&anchorKey, "anchor", "a", "", "item key to open the page on")
	chromeCmd.Flags().BoolVar(&headless, "headless", false, "run Chrome without a window")
	return chromeCmd
}

// runChrome mounts one grid per section on a browser host and runs the event
// loop and the tab until the window closes or ctx is cancelled.
func runChrome(ctx context.Context, cfg config.Interface, anchorKey string, logger *zap.Logger) error {
	rep, err := loadReport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	bcfg := cfg.Browser()
	rules, err := config.ParseRules(bcfg.Rules)
	if err != nil {
		return fmt.Errorf("invalid browser rules: %w", err)
	}

	loop := scheduler.NewLoop(logger, cfg.Grid().FrameRate)
	host := browser.NewHost(bcfg, anchorKey, logger)
	grids, err := mountGrids(rep, func(section string) (grid.Options[catalog.Item, browser.Cell], surface.Surface, surface.Painter[browser.Cell]) {
		s := host.AddSection(rep.title(section))
		return grid.Options[catalog.Item, browser.Cell]{
			Render:     browser.RenderItem,
			CellHeight: bcfg.CellHeight,
			Rules:      rules,
		}, s, s
	}, cfg.Grid(), loop, logger)
	if err != nil {
		return err
	}
	defer teardown(grids)

	page, err := browser.RenderPage(pageTitle, host.Titles())
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return loop.Run(egCtx) })
	eg.Go(func() error { return host.Run(egCtx, page) })

	err = eg.Wait()
	switch {
	case errors.Is(err, browser.ErrBrowserClosed):
		logger.Info("Browser window closed.")
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}
