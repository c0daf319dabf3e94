// internal/vgrid/grid/grid.go
package grid

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/vgrid/anchor"
	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
	"github.com/xkilldash9x/vgrid/internal/vgrid/layout"
	"github.com/xkilldash9x/vgrid/internal/vgrid/scheduler"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
	"github.com/xkilldash9x/vgrid/internal/vgrid/visibility"
	"github.com/xkilldash9x/vgrid/internal/vgrid/window"
)

// Grid windows a uniform-height collection onto a host surface. Only the
// rows around the viewport are rendered; the container still reserves the
// full scroll height.
//
// Every event is reposted onto the scheduler, so layout, window and anchor
// state are only ever touched from one goroutine. The snapshot accessors
// (Layout, State, Frame, Err) are safe from anywhere.
type Grid[T, R any] struct {
	id       string
	name     string
	logger   *zap.Logger
	sched    scheduler.Scheduler
	key      func(T) string
	render   func(T) R
	cell     float64
	rules    []breakpoint.Rule
	session  *anchor.Session
	delay    time.Duration
	onError  func(error)
	frameKey string

	// Scheduler-confined.
	items     []T
	nav       *anchor.Navigator
	gate      *visibility.Gate
	tracker   window.Tracker
	layout    layout.Layout
	hasLayout bool
	surf      surface.Surface
	painter   surface.Painter[R]

	mounted  atomic.Bool
	attached atomic.Bool // set once surf and painter are written
	closed   atomic.Bool

	mu          sync.Mutex
	unsubs      []surface.Unsubscribe
	stopLanding func() bool
	err         error
	snapLayout  layout.Layout
	snapState   window.State
	snapFrame   surface.Frame[R]
	painted     bool
}

// New validates opts and builds an unmounted grid.
func New[T, R any](opts Options[T, R]) (*Grid[T, R], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	index, err := anchor.NewIndex(opts.Items, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("building key index: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	session := opts.Session
	if session == nil {
		session = anchor.NewSession()
	}
	delay := opts.LandingDelay
	if delay == 0 {
		delay = DefaultLandingDelay
	}
	rules := make([]breakpoint.Rule, len(opts.Rules))
	copy(rules, opts.Rules)

	id := uuid.NewString()
	return &Grid[T, R]{
		id:       id,
		name:     opts.Name,
		logger:   logger.Named("grid").With(zap.String("grid_id", id), zap.String("grid", opts.Name)),
		sched:    opts.Scheduler,
		key:      opts.Key,
		render:   opts.Render,
		cell:     opts.CellHeight,
		rules:    rules,
		session:  session,
		delay:    delay,
		onError:  opts.OnError,
		frameKey: "layout/" + id,
		items:    opts.Items,
		nav:      anchor.NewNavigator(session, index),
		gate:     visibility.NewGate(false),
	}, nil
}

// ID is the grid's instance identifier.
func (g *Grid[T, R]) ID() string { return g.id }

// Name is the label given in Options.
func (g *Grid[T, R]) Name() string { return g.name }

// Mount attaches the grid to a surface and painter and schedules the first
// layout. A grid can be mounted once.
func (g *Grid[T, R]) Mount(s surface.Surface, p surface.Painter[R]) error {
	if g.closed.Load() {
		if err := g.Err(); err != nil {
			return err
		}
		return ErrClosed
	}
	if !g.mounted.CompareAndSwap(false, true) {
		return ErrAlreadyMounted
	}
	g.surf, g.painter = s, p
	g.attached.Store(true)

	unsubs := []surface.Unsubscribe{
		s.OnScroll(func(y float64) {
			g.sched.Post(func() { g.handleScroll(y) })
		}),
		s.OnResize(func(float64) {
			g.sched.RequestFrame(g.frameKey, g.relayout)
		}),
		s.OnVisibility(func(visible bool) {
			g.sched.Post(func() { g.handleVisibility(visible) })
		}),
		s.OnAnchorChange(func(key string) {
			g.sched.Post(func() { g.handleAnchorChange(key) })
		}),
	}
	g.mu.Lock()
	g.unsubs = unsubs
	g.mu.Unlock()

	g.logger.Debug("Grid mounted.", zap.Int("items", len(g.items)), zap.Int("rules", len(g.rules)))
	g.sched.RequestFrame(g.frameKey, g.relayout)
	return nil
}

// Teardown releases every listener and cancels a pending landing. Safe to
// call more than once and from any goroutine.
func (g *Grid[T, R]) Teardown() {
	if g.closed.Swap(true) {
		return
	}
	g.release()
	g.logger.Debug("Grid torn down.")
}

// SetItems replaces the collection. Keys are re-indexed immediately; the
// layout is recomputed and the window repainted on the scheduler. Before
// Mount the items are only stored, and the first layout picks them up.
func (g *Grid[T, R]) SetItems(items []T) error {
	index, err := anchor.NewIndex(items, g.key)
	if err != nil {
		return fmt.Errorf("building key index: %w", err)
	}
	g.sched.Post(func() {
		if g.closed.Load() {
			return
		}
		g.items = items
		g.nav.SetIndex(index)
		if !g.attached.Load() {
			return
		}
		g.layoutPass(true)
	})
	return nil
}

// Err returns the error that halted the grid, if any.
func (g *Grid[T, R]) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Layout returns the most recent layout, or false before the first one.
func (g *Grid[T, R]) Layout() (layout.Layout, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapLayout, g.snapLayout.Valid()
}

// State returns the most recent window state.
func (g *Grid[T, R]) State() window.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapState
}

// Frame returns the last painted frame, or false before the first paint.
func (g *Grid[T, R]) Frame() (surface.Frame[R], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapFrame, g.painted
}

func (g *Grid[T, R]) handleScroll(y float64) {
	if g.closed.Load() || !g.hasLayout || !g.gate.ShouldProcessScroll() {
		return
	}
	g.updateOffset(y)
}

func (g *Grid[T, R]) handleVisibility(visible bool) {
	if g.closed.Load() {
		return
	}
	entered := g.gate.Set(visible)
	if entered && g.hasLayout {
		// Scroll ticks were skipped while hidden.
		g.updateOffset(g.surf.ScrollOffset())
	}
}

func (g *Grid[T, R]) handleAnchorChange(key string) {
	if g.closed.Load() || !g.hasLayout || key == "" {
		return
	}
	geom, ok := g.surf.Geometry()
	if !ok {
		return
	}
	target, ok := g.nav.JumpTo(key, geom.OffsetTop, g.layout)
	if !ok {
		g.logger.Debug("Anchor not in this grid.", zap.String("anchor", key))
		return
	}
	g.logger.Debug("Jumping to anchor.",
		zap.String("anchor", key), zap.Int("index", target.Resolved), zap.Float64("scroll_y", target.ScrollY))
	g.surf.AnimateScrollTo(target.ScrollY)
}

func (g *Grid[T, R]) updateOffset(scroll float64) {
	geom, ok := g.surf.Geometry()
	if !ok {
		return
	}
	if g.tracker.Scroll(scroll, geom.OffsetTop, g.layout) {
		g.paint()
	}
}

// relayout recomputes the layout from fresh geometry in one step. Nothing is
// painted when the result is unchanged.
func (g *Grid[T, R]) relayout() { g.layoutPass(false) }

// layoutPass runs one layout step. With repaint set the window is painted
// even when the layout is unchanged, since the items under it may differ.
func (g *Grid[T, R]) layoutPass(repaint bool) {
	if g.closed.Load() {
		return
	}
	geom, ok := g.surf.Geometry()
	if !ok {
		g.logger.Debug("Container geometry unavailable, skipping layout.")
		return
	}
	rule, err := breakpoint.Resolve(g.rules, geom.ViewportWidth)
	if err != nil {
		g.halt(err)
		return
	}

	next := layout.Compute(rule, geom.ClientWidth, g.cell, len(g.items), geom.ViewportHeight)
	first := !g.hasLayout
	if !first && next == g.layout {
		if repaint {
			g.paint()
		}
		return
	}
	g.layout, g.hasLayout = next, true
	g.tracker.Apply(next)
	if g.gate.ShouldProcessScroll() {
		g.tracker.Scroll(g.surf.ScrollOffset(), geom.OffsetTop, next)
	}

	g.mu.Lock()
	g.snapLayout = next
	g.mu.Unlock()

	g.logger.Debug("Layout computed.",
		zap.Stringer("rule", rule),
		zap.Int("columns", next.ColumnCount),
		zap.Float64("total_height", next.TotalHeight),
		zap.Int("visible_length", next.VisibleLength))
	g.paint()

	if first {
		g.scheduleLanding()
	}
}

func (g *Grid[T, R]) scheduleLanding() {
	if g.surf.Anchor() == "" || g.session.Consumed() {
		return
	}
	stop := g.sched.AfterFunc(g.delay, g.land)
	g.mu.Lock()
	g.stopLanding = stop
	g.mu.Unlock()
}

// land performs the one-shot jump to the anchor present at load.
func (g *Grid[T, R]) land() {
	g.mu.Lock()
	g.stopLanding = nil
	g.mu.Unlock()

	if g.closed.Load() {
		return
	}
	geom, ok := g.surf.Geometry()
	if !ok {
		return
	}
	key := g.surf.Anchor()
	target, ok := g.nav.LandOnLoad(key, geom.OffsetTop, g.layout)
	if !ok {
		return
	}
	g.logger.Info("Landed on anchor.",
		zap.String("anchor", key), zap.Int("index", target.Resolved), zap.Float64("scroll_y", target.ScrollY))
	g.tracker.JumpTo(target.Index, g.layout)
	g.surf.ScrollTo(target.ScrollY)
	g.paint()
}

func (g *Grid[T, R]) paint() {
	st := g.tracker.State()
	visible := window.Slice(g.items, st.OffsetIndex, st.VisibleLength)
	cells := make([]R, len(visible))
	for i, item := range visible {
		cells[i] = g.render(item)
	}
	fr := surface.Frame[R]{
		Cells:       cells,
		FirstIndex:  st.OffsetIndex,
		Top:         g.tracker.Top(g.layout),
		TotalHeight: st.TotalHeight,
		ColumnCount: st.ColumnCount,
		Gap:         g.layout.Gap,
		RowHeight:   g.layout.RowHeight,
		CellHeight:  g.layout.CellHeight,
	}

	g.mu.Lock()
	g.snapState = st
	g.snapFrame = fr
	g.painted = true
	g.mu.Unlock()

	if g.painter != nil {
		g.painter.Paint(fr)
	}
}

// halt stops the grid after a configuration error.
func (g *Grid[T, R]) halt(cause error) {
	err := fmt.Errorf("%w: %w", ErrHalted, cause)
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()

	g.closed.Store(true)
	g.release()
	g.logger.Error("Grid halted on configuration error.", zap.Error(cause))
	if g.onError != nil {
		g.onError(err)
	}
}

func (g *Grid[T, R]) release() {
	g.mu.Lock()
	unsubs, stop := g.unsubs, g.stopLanding
	g.unsubs, g.stopLanding = nil, nil
	g.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	if stop != nil {
		stop()
	}
}
