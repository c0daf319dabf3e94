// internal/terminal/draw.go
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle  = tcell.StyleDefault.Bold(true).Underline(true)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// Draw renders the visible part of the document and the status line.
func (h *Host) Draw() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.screen.Clear()
	vh := h.viewportHeightLocked()
	scroll := int(h.scroll)
	top := 0
	for _, s := range h.sections {
		if y := top - scroll; y >= 0 && y < vh {
			drawText(h.screen, margin, y, h.clientWidthLocked(), s.title, titleStyle)
		}
		ctop := top + 1
		if s.painted {
			h.drawFrameLocked(s, ctop-scroll, vh)
		}
		top = ctop + s.heightLocked() + 1
	}
	h.drawStatusLocked(vh)
	h.screen.Show()
}

// drawFrameLocked paints the frame cells of s with the container's first row
// at screen row y0. Rows outside [0, vh) are skipped.
func (h *Host) drawFrameLocked(s *Section, y0, vh int) {
	f := s.frame
	client := float64(h.clientWidthLocked())
	rows := int(f.CellHeight)
	for i, c := range f.Cells {
		pos := f.Position(i, client)
		x := margin + int(pos.X)
		w := int(pos.Width)
		y := y0 + int(pos.Y)
		if y+rows <= 0 || y >= vh || w <= 0 {
			continue
		}
		for r := 0; r < rows; r++ {
			if yy := y + r; yy >= 0 && yy < vh {
				for xx := x; xx < x+w; xx++ {
					h.screen.SetContent(xx, yy, ' ', nil, c.Style)
				}
			}
		}
		inner := max(0, w-2)
		if y >= 0 && y < vh {
			drawText(h.screen, x+1, y, inner, runewidth.Truncate(c.Label, inner, "…"), c.Style.Bold(true))
		}
		if rows > 1 && y+1 >= 0 && y+1 < vh {
			drawText(h.screen, x+1, y+1, inner, runewidth.Truncate(c.Detail, inner, "…"), c.Style)
		}
	}
}

func (h *Host) drawStatusLocked(y int) {
	if h.height <= 0 {
		return
	}
	for x := 0; x < h.width; x++ {
		h.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
	var line string
	if h.prompting {
		line = "jump to #" + string(h.prompt)
		h.screen.ShowCursor(len("jump to #")+runewidth.StringWidth(string(h.prompt))+1, y)
	} else {
		h.screen.HideCursor()
		limit := max(0, h.documentHeightLocked()-h.viewportHeightLocked())
		line = fmt.Sprintf("row %d/%d", int(h.scroll), limit)
		if h.anchor != "" {
			line += "  #" + h.anchor
		}
		line += "  [#] jump  [q] quit"
	}
	drawText(h.screen, 1, y, h.width-1, line, statusStyle)
}

// drawText writes s from column x, stopping before it would pass x+width.
// Wide runes take two columns.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	end := x + width
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > end {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
}
