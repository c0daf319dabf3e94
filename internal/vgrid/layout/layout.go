// internal/vgrid/layout/layout.go
package layout

import (
	"math"

	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
)

// PrefetchRows is the number of extra rows kept materialized beyond the visible
// viewport so that fast scrolling does not expose empty rows before the next
// recomputation lands.
const PrefetchRows = 2

// Layout is the derived geometry of one grid for one container width.
// It is a value type; two computations from identical inputs compare equal.
type Layout struct {
	Rule          breakpoint.Rule
	ColumnCount   int
	Gap           float64
	CellHeight    float64
	RowHeight     float64
	TotalHeight   float64
	VisibleLength int
	ItemCount     int
}

// Compute derives the layout for the active rule.
func Compute(rule breakpoint.Rule, containerWidth, cellHeight float64, itemCount int, viewportHeight float64) Layout {
	if itemCount < 0 {
		itemCount = 0
	}
	cols := Columns(rule, containerWidth)
	rowHeight := cellHeight + rule.Gap

	return Layout{
		Rule:          rule,
		ColumnCount:   cols,
		Gap:           rule.Gap,
		CellHeight:    cellHeight,
		RowHeight:     rowHeight,
		TotalHeight:   TotalHeight(itemCount, cols, rowHeight, rule.Gap),
		VisibleLength: VisibleLength(viewportHeight, rowHeight, cols),
		ItemCount:     itemCount,
	}
}

// Columns returns how many columns of at least MinColumnWidth fit in the container,
// counting one gap between adjacent columns. Never less than one.
func Columns(rule breakpoint.Rule, containerWidth float64) int {
	if !rule.HasMinColumnWidth() || containerWidth <= 0 || math.IsNaN(containerWidth) {
		return 1
	}
	n := math.Floor((containerWidth + rule.Gap) / (rule.MinColumnWidth + rule.Gap))
	if n < 1 || math.IsNaN(n) {
		return 1
	}
	if math.IsInf(n, 1) || n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// TotalHeight is the scrollable height of the whole collection. The last row
// carries no trailing gap, and an empty collection has no height at all.
func TotalHeight(itemCount, columnCount int, rowHeight, gap float64) float64 {
	if itemCount <= 0 || columnCount <= 0 {
		return 0
	}
	rows := (itemCount + columnCount - 1) / columnCount
	h := float64(rows)*rowHeight - gap
	if h < 0 {
		return 0
	}
	return h
}

// VisibleLength is the number of items to keep materialized: the rows that fit
// in the viewport, one partially visible row at each edge, and the prefetch rows.
func VisibleLength(viewportHeight, rowHeight float64, columnCount int) int {
	if columnCount < 1 {
		columnCount = 1
	}
	rows := 0
	if viewportHeight > 0 && rowHeight > 0 {
		r := math.Floor(viewportHeight / rowHeight)
		if r > math.MaxInt32 {
			r = math.MaxInt32
		}
		rows = int(r)
	}
	return (rows + 2 + PrefetchRows) * columnCount
}

// Valid reports whether the layout can be used for offset math.
func (l Layout) Valid() bool {
	return l.ColumnCount >= 1 && l.RowHeight > 0
}

// Rows is the number of rows the collection occupies.
func (l Layout) Rows() int {
	if l.ColumnCount < 1 || l.ItemCount <= 0 {
		return 0
	}
	return (l.ItemCount + l.ColumnCount - 1) / l.ColumnCount
}

// RowTop returns the vertical position, relative to the container top, of the
// row holding the item at index.
func (l Layout) RowTop(index int) float64 {
	if !l.Valid() || index <= 0 {
		return 0
	}
	return float64(index/l.ColumnCount) * l.RowHeight
}
