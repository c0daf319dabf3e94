// File: cmd/layout.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/vgrid/anchor"
	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
	"github.com/xkilldash9x/vgrid/internal/vgrid/layout"
	"github.com/xkilldash9x/vgrid/internal/vgrid/window"
)

// layoutParams are the inputs of one layout computation.
type layoutParams struct {
	host           string
	viewportWidth  float64
	viewportHeight float64
	width          float64
	cellHeight     float64
	items          int
	scroll         float64
	containerTop   float64
	anchorIndex    int
}

func newLayoutCmd() *cobra.Command {
	var p layoutParams

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the grid geometry for a viewport",
		Long: `Resolves the breakpoint rule for a viewport and prints the derived layout:
column count, row height, total height, the materialized window for a scroll
position and, optionally, where an anchored item lands. Rules and cell height
come from the terminal or browser section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				p.width = p.viewportWidth
			}
			return runLayout(cmd.OutOrStdout(), cfg, p)
		},
	}

	f := layoutCmd.Flags()
	f.StringVar(&p.host, "host", "browser", "rule set to use: terminal or browser")
	f.Float64Var(&p.viewportWidth, "viewport-width", 1280, "viewport width used to resolve the breakpoint")
	f.Float64Var(&p.viewportHeight, "viewport-height", 800, "viewport height")
	f.Float64Var(&p.width, "width", 0, "container width (default: the viewport width)")
	f.Float64Var(&p.cellHeight, "cell-height", 0, "cell height (default: from config)")
	f.IntVar(&p.items, "items", 1500, "number of items in the grid")
	f.Float64Var(&p.scroll, "scroll", 0, "scroll position of the page")
	f.Float64Var(&p.containerTop, "container-top", 0, "offset of the container from the top of the page")
	f.IntVar(&p.anchorIndex, "anchor-index", -1, "index of an anchored item to locate")
	return layoutCmd
}

func runLayout(w io.Writer, cfg config.Interface, p layoutParams) error {
	var (
		rcs  []config.RuleConfig
		cell float64
	)
	switch p.host {
	case "terminal":
		rcs, cell = cfg.Terminal().Rules, cfg.Terminal().CellHeight
	case "browser":
		rcs, cell = cfg.Browser().Rules, cfg.Browser().CellHeight
	default:
		return fmt.Errorf("unknown host %q (want terminal or browser)", p.host)
	}
	if p.cellHeight > 0 {
		cell = p.cellHeight
	}
	if p.items < 0 {
		return fmt.Errorf("items must not be negative, got %d", p.items)
	}

	rules, err := config.ParseRules(rcs)
	if err != nil {
		return err
	}
	rule, err := breakpoint.Resolve(rules, p.viewportWidth)
	if err != nil {
		return err
	}
	l := layout.Compute(rule, p.width, cell, p.items, p.viewportHeight)
	offset := window.ComputeOffset(p.scroll, p.containerTop, l)
	end := min(offset+l.VisibleLength, p.items)
	if offset > end {
		offset = end
	}

	fmt.Fprintf(w, "%-15s %s\n", "rule", rule)
	fmt.Fprintf(w, "%-15s %d\n", "columns", l.ColumnCount)
	fmt.Fprintf(w, "%-15s %g\n", "row height", l.RowHeight)
	fmt.Fprintf(w, "%-15s %g\n", "total height", l.TotalHeight)
	fmt.Fprintf(w, "%-15s %d\n", "visible length", l.VisibleLength)
	fmt.Fprintf(w, "%-15s %d..%d of %d\n", "window", offset, end, p.items)

	if p.anchorIndex >= 0 {
		if p.anchorIndex >= p.items {
			return fmt.Errorf("anchor index %d is outside %d items", p.anchorIndex, p.items)
		}
		t := anchor.TargetFor(p.anchorIndex, p.containerTop, l)
		fmt.Fprintf(w, "%-15s %d -> offset %d, scroll %g\n", "anchor", t.Resolved, t.Index, t.ScrollY)
	}
	return nil
}
