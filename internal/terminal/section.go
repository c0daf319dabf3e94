// internal/terminal/section.go
package terminal

import (
	"math"

	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

// Section is one titled grid container in the host document. It is both the
// grid's surface and its painter.
type Section struct {
	host  *Host
	index int
	title string

	// Guarded by host.mu.
	frame    surface.Frame[Cell]
	painted  bool
	visible  bool
	visKnown bool

	scrollHub surface.Hub[float64]
	resizeHub surface.Hub[float64]
	visHub    surface.Hub[bool]
	anchorHub surface.Hub[string]
}

var (
	_ surface.Surface       = (*Section)(nil)
	_ surface.Painter[Cell] = (*Section)(nil)
)

// Title is the heading drawn above the container.
func (s *Section) Title() string { return s.title }

func (s *Section) ScrollOffset() float64 {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.host.scroll
}

func (s *Section) Geometry() (surface.Geometry, bool) {
	h := s.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.width <= 0 || h.height <= 0 {
		return surface.Geometry{}, false
	}
	return surface.Geometry{
		OffsetTop:      float64(h.containerTopLocked(s.index)),
		ClientWidth:    float64(h.clientWidthLocked()),
		ViewportWidth:  float64(h.width),
		ViewportHeight: float64(h.viewportHeightLocked()),
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

func (s *Section) ScrollTo(y float64)        { s.host.setScroll(y, false) }
func (s *Section) AnimateScrollTo(y float64) { s.host.animateTo(y) }

// Paint stores the frame for the next draw. A change in the reserved height
// moves every later section, so they are told to re-read their geometry.
func (s *Section) Paint(f surface.Frame[Cell]) {
	h := s.host
	h.mu.Lock()
	before := s.heightLocked()
	s.frame, s.painted = f, true
	moved := s.heightLocked() != before
	h.mu.Unlock()

	if moved {
		h.layoutChanged()
	}
	h.requestRedraw()
}

// Frame returns the last painted frame.
func (s *Section) Frame() (surface.Frame[Cell], bool) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.frame, s.painted
}

// heightLocked is the number of rows the container reserves.
func (s *Section) heightLocked() int {
	if !s.painted {
		return 0
	}
	return int(math.Ceil(s.frame.TotalHeight))
}
