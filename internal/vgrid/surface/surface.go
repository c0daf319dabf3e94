// internal/vgrid/surface/surface.go
package surface

// Geometry is a snapshot of the measurements the grid needs from its host.
type Geometry struct {
	// OffsetTop is the container's top edge in scroll coordinates.
	OffsetTop float64
	// ClientWidth is the container's content width.
	ClientWidth float64
	// ViewportWidth selects the breakpoint rule.
	ViewportWidth float64
	// ViewportHeight sizes the visible window.
	ViewportHeight float64
}

// Unsubscribe detaches a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// Surface is the host environment a grid is mounted into: a scrollable
// viewport, a container element inside it, and an optional location anchor.
//
// Listener callbacks may be invoked from any goroutine. The grid reposts them
// onto its scheduler before touching state.
type Surface interface {
	// ScrollOffset is the viewport's current vertical scroll position.
	ScrollOffset() float64
	// Geometry reports false while the container is detached or unmeasured.
	Geometry() (Geometry, bool)

	OnScroll(fn func(offset float64)) Unsubscribe
	OnResize(fn func(containerWidth float64)) Unsubscribe
	OnVisibility(fn func(visible bool)) Unsubscribe
	OnAnchorChange(fn func(key string)) Unsubscribe

	// Anchor is the key named by the current location, or "" when there is none.
	Anchor() string
	// ScrollTo moves the viewport immediately.
	ScrollTo(y float64)
	// AnimateScrollTo moves the viewport with the host's smooth scrolling.
	AnimateScrollTo(y float64)
}

// Painter receives each frame the grid renders.
type Painter[R any] interface {
	Paint(Frame[R])
}

// PainterFunc adapts a function to Painter.
type PainterFunc[R any] func(Frame[R])

func (f PainterFunc[R]) Paint(fr Frame[R]) { f(fr) }
