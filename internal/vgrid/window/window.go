// internal/vgrid/window/window.go
package window

import (
	"math"

	"github.com/xkilldash9x/vgrid/internal/vgrid/layout"
)

// State is the materialized window of one grid instance.
//
// OffsetIndex is always a non-negative multiple of ColumnCount. VisibleLength may
// reach past the end of the collection; Slice drops the missing indices.
type State struct {
	OffsetIndex   int
	VisibleLength int
	ColumnCount   int
	TotalHeight   float64
}

// ComputeOffset maps a scroll position to the index of the first materialized item.
// containerTop is the container's offset from the top of the scrolling surface; when
// the container has not reached the top of the viewport yet the offset is zero.
func ComputeOffset(scrollPosition, containerTop float64, l layout.Layout) int {
	if !l.Valid() {
		return 0
	}
	deltaY := scrollPosition - containerTop
	if deltaY <= 0 || math.IsNaN(deltaY) {
		return 0
	}
	row := math.Floor(deltaY / l.RowHeight)
	if row > math.MaxInt32 {
		row = math.MaxInt32
	}
	return int(row) * l.ColumnCount
}

// Align rounds index down to the start of its row.
func Align(index, columnCount int) int {
	if index <= 0 {
		return 0
	}
	if columnCount <= 1 {
		return index
	}
	return index - index%columnCount
}

// Slice returns items[offset : offset+length], truncated at the end of the collection.
func Slice[T any](items []T, offset, length int) []T {
	if offset < 0 {
		offset = 0
	}
	if length <= 0 || offset >= len(items) {
		return nil
	}
	end := offset + length
	if end > len(items) || end < offset {
		end = len(items)
	}
	return items[offset:end:end]
}

// Tracker owns the window state of a single grid. It is not safe for concurrent
// use; the grid confines it to its scheduler.
type Tracker struct {
	state State
}

// State returns a copy of the current window.
func (t *Tracker) State() State { return t.state }

// Apply adopts a new layout. A changed column count realigns the offset down to
// the new row boundary so that offset and render top stay consistent.
// It reports whether anything observable changed.
func (t *Tracker) Apply(l layout.Layout) bool {
	next := State{
		OffsetIndex:   Align(t.state.OffsetIndex, l.ColumnCount),
		VisibleLength: l.VisibleLength,
		ColumnCount:   l.ColumnCount,
		TotalHeight:   l.TotalHeight,
	}
	if next == t.state {
		return false
	}
	t.state = next
	return true
}

// Scroll recomputes the offset for a scroll position. The state only changes
// when the offset does, so repeated ticks inside one row are free.
func (t *Tracker) Scroll(scrollPosition, containerTop float64, l layout.Layout) bool {
	return t.setOffset(ComputeOffset(scrollPosition, containerTop, l))
}

// JumpTo places the window directly at index, bypassing scroll-derived
// computation. Indices that do not start a row are rounded down.
func (t *Tracker) JumpTo(index int, l layout.Layout) bool {
	return t.setOffset(Align(index, l.ColumnCount))
}

func (t *Tracker) setOffset(offset int) bool {
	if offset == t.state.OffsetIndex {
		return false
	}
	t.state.OffsetIndex = offset
	return true
}

// Top is the vertical position of the materialized block inside the container.
func (t *Tracker) Top(l layout.Layout) float64 {
	return l.RowTop(t.state.OffsetIndex)
}
