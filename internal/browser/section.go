// internal/browser/section.go
package browser

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

// Section is one grid container on the page. It is both the grid's surface
// and its painter.
type Section struct {
	host  *Host
	index int
	title string

	scrollHub surface.Hub[float64]
	resizeHub surface.Hub[float64]
	visHub    surface.Hub[bool]
	anchorHub surface.Hub[string]
}

var (
	_ surface.Surface       = (*Section)(nil)
	_ surface.Painter[Cell] = (*Section)(nil)
)

// Title is the section heading.
func (s *Section) Title() string { return s.title }

func (s *Section) ScrollOffset() float64 {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.host.snap.ScrollY
}

// Geometry reads the last snapshot the page reported.
func (s *Section) Geometry() (surface.Geometry, bool) {
	h := s.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.measured || s.index >= len(h.snap.Containers) {
		return surface.Geometry{}, false
	}
	box := h.snap.Containers[s.index]
	return surface.Geometry{
		OffsetTop:      box.Top,
		ClientWidth:    box.Width,
		ViewportWidth:  h.snap.ViewportWidth,
		ViewportHeight: h.snap.ViewportHeight,
	}, true
}

func (s *Section) OnScroll(fn func(float64)) surface.Unsubscribe { return s.scrollHub.Subscribe(fn) }
func (s *Section) OnResize(fn func(float64)) surface.Unsubscribe { return s.resizeHub.Subscribe(fn) }
func (s *Section) OnVisibility(fn func(bool)) surface.Unsubscribe {
	return s.visHub.Subscribe(fn)
}
func (s *Section) OnAnchorChange(fn func(string)) surface.Unsubscribe {
	return s.anchorHub.Subscribe(fn)
}

func (s *Section) Anchor() string {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.host.anchor
}

// ScrollTo jumps the page. The cached scroll offset moves with it so reads
// before the page reports back are consistent.
func (s *Section) ScrollTo(y float64) {
	s.host.mu.Lock()
	s.host.snap.ScrollY = y
	s.host.mu.Unlock()
	s.host.command("scrollTo", y, false)
}

func (s *Section) AnimateScrollTo(y float64) {
	s.host.command("scrollTo", y, true)
}

// Paint ships the frame to the container as an HTML fragment.
func (s *Section) Paint(f surface.Frame[Cell]) {
	width := 0.0
	if g, ok := s.Geometry(); ok {
		width = g.ClientWidth
	}
	fragment, err := RenderCells(f, width)
	if err != nil {
		s.host.logger.Error("Failed to render frame.", zap.String("section", s.title), zap.Error(err))
		return
	}
	s.host.command("paint", s.index, f.TotalHeight, fragment)
}
