// internal/vgrid/visibility/gate.go
package visibility

import "sync/atomic"

// Gate tracks whether a grid's container intersects the viewport. Scroll-driven
// work is skipped while the container is fully off-screen. Resize-driven work
// never consults the gate.
//
// A gate starts closed: until the host reports an intersection, scroll ticks are
// ignored. The initial window is computed when the layout is, not on scroll.
type Gate struct {
	visible atomic.Bool
}

// NewGate returns a gate with the given initial state.
func NewGate(visible bool) *Gate {
	g := &Gate{}
	g.visible.Store(visible)
	return g
}

// ShouldProcessScroll reports whether a scroll tick should recompute the window.
func (g *Gate) ShouldProcessScroll() bool { return g.visible.Load() }

// Set records a boundary crossing and reports whether the container just
// entered the viewport.
func (g *Gate) Set(visible bool) (entered bool) {
	was := g.visible.Swap(visible)
	return visible && !was
}
