// internal/terminal/cell.go
package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/xkilldash9x/vgrid/internal/catalog"
)

// Cell is what a grid renders for the terminal: two lines of text on a
// colored block.
type Cell struct {
	Label  string
	Detail string
	Style  tcell.Style
}

var statusStyles = map[catalog.Status]tcell.Style{
	catalog.StatusFailed: tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite),
	catalog.StatusNew:    tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite),
	catalog.StatusPassed: tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite),
}

// RenderItem is the render function for catalog items.
func RenderItem(it catalog.Item) Cell {
	style, ok := statusStyles[it.Status]
	if !ok {
		style = tcell.StyleDefault.Reverse(true)
	}
	return Cell{Label: it.Title, Detail: "#" + it.Key, Style: style}
}
