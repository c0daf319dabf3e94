// internal/vgrid/surface/frame.go
package surface

// Frame is one rendered window of a grid. Cells holds the rendered items in
// index order starting at FirstIndex; the first row is drawn at Top inside a
// spacer of TotalHeight.
type Frame[R any] struct {
	Cells       []R
	FirstIndex  int
	Top         float64
	TotalHeight float64
	ColumnCount int
	Gap         float64
	RowHeight   float64
	CellHeight  float64
}

// CellPosition is where a cell sits inside the container.
type CellPosition struct {
	Row, Column int
	X, Y        float64
	Width       float64
}

// Position places the i-th cell of the frame for a container of the given width.
func (f Frame[R]) Position(i int, containerWidth float64) CellPosition {
	cols := f.ColumnCount
	if cols < 1 {
		cols = 1
	}
	width := (containerWidth - float64(cols-1)*f.Gap) / float64(cols)
	if width < 0 {
		width = 0
	}
	row, col := i/cols, i%cols
	return CellPosition{
		Row:    row,
		Column: col,
		X:      float64(col) * (width + f.Gap),
		Y:      f.Top + float64(row)*f.RowHeight,
		Width:  width,
	}
}

// LastIndex is one past the final item in the frame.
func (f Frame[R]) LastIndex() int { return f.FirstIndex + len(f.Cells) }
