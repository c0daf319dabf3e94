// internal/vgrid/grid/grid_test.go
package grid

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/vgrid/internal/mocks"
	"github.com/xkilldash9x/vgrid/internal/vgrid/anchor"
	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
	"github.com/xkilldash9x/vgrid/internal/vgrid/scheduler"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

var cascade = []breakpoint.Rule{
	{Query: breakpoint.Always(), Gap: 16},
	{Query: breakpoint.MinWidth(500), Gap: 32, MinColumnWidth: 360},
	{Query: breakpoint.MinWidth(960), Gap: 32, MinColumnWidth: 420},
}

var desktop = surface.Geometry{ClientWidth: 1000, ViewportWidth: 1000, ViewportHeight: 800}

func keys(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s_%d", prefix, i)
	}
	return out
}

type fixture struct {
	sched   *scheduler.Manual
	surf    *mocks.FakeSurface
	painter *mocks.RecordingPainter[string]
	grid    *Grid[string, string]
}

func newFixture(t *testing.T, geom surface.Geometry, mutate func(*Options[string, string])) *fixture {
	t.Helper()
	f := &fixture{
		sched:   scheduler.NewManual(),
		surf:    mocks.NewFakeSurface(geom),
		painter: &mocks.RecordingPainter[string]{},
	}
	opts := Options[string, string]{
		Name:       "test",
		Items:      keys("item", 1000),
		Key:        func(s string) string { return s },
		Render:     func(s string) string { return s },
		CellHeight: 160,
		Rules:      cascade,
		Scheduler:  f.sched,
		Logger:     zaptest.NewLogger(t),
	}
	if mutate != nil {
		mutate(&opts)
	}
	g, err := New(opts)
	require.NoError(t, err)
	f.grid = g
	return f
}

func (f *fixture) mount(t *testing.T) {
	t.Helper()
	require.NoError(t, f.grid.Mount(f.surf, f.painter))
	f.sched.Flush()
}

func (f *fixture) last(t *testing.T) surface.Frame[string] {
	t.Helper()
	fr, ok := f.painter.Last()
	require.True(t, ok, "nothing painted")
	return fr
}

func TestNew_Validation(t *testing.T) {
	base := func() Options[string, string] {
		return Options[string, string]{
			Items:      keys("item", 3),
			Key:        func(s string) string { return s },
			Render:     func(s string) string { return s },
			CellHeight: 10,
			Rules:      cascade,
			Scheduler:  scheduler.NewManual(),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Options[string, string])
		want   error
	}{
		{"nil key", func(o *Options[string, string]) { o.Key = nil }, ErrInvalidOptions},
		{"nil render", func(o *Options[string, string]) { o.Render = nil }, ErrInvalidOptions},
		{"nil scheduler", func(o *Options[string, string]) { o.Scheduler = nil }, ErrInvalidOptions},
		{"zero cell height", func(o *Options[string, string]) { o.CellHeight = 0 }, ErrInvalidCellHeight},
		{"NaN cell height", func(o *Options[string, string]) { o.CellHeight = math.NaN() }, ErrInvalidCellHeight},
		{"infinite cell height", func(o *Options[string, string]) { o.CellHeight = math.Inf(1) }, ErrInvalidCellHeight},
		{"no rules", func(o *Options[string, string]) { o.Rules = nil }, ErrNoRules},
		{"fallback not first", func(o *Options[string, string]) {
			o.Rules = []breakpoint.Rule{{Query: breakpoint.MinWidth(500)}, {Query: breakpoint.Always()}}
		}, breakpoint.ErrFallbackNotFirst},
		{"negative gap", func(o *Options[string, string]) {
			o.Rules = []breakpoint.Rule{{Query: breakpoint.Always(), Gap: -1}}
		}, breakpoint.ErrInvalidRule},
		{"duplicate keys", func(o *Options[string, string]) { o.Items = []string{"a", "b", "a"} }, anchor.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base()
			tt.mutate(&opts)
			g, err := New(opts)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	g, err := New(base())
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID())
}

func TestGrid_InitialLayoutAndFrame(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)

	l, ok := f.grid.Layout()
	require.True(t, ok)
	assert.Equal(t, 2, l.ColumnCount)
	assert.Equal(t, 192.0, l.RowHeight)
	assert.Equal(t, 95968.0, l.TotalHeight)
	assert.Equal(t, 16, l.VisibleLength)

	fr := f.last(t)
	assert.Equal(t, 0, fr.FirstIndex)
	assert.Equal(t, 0.0, fr.Top)
	assert.Equal(t, keys("item", 16), fr.Cells)
	assert.Equal(t, 95968.0, fr.TotalHeight)
	assert.Equal(t, 1, f.painter.Count())

	snap, ok := f.grid.Frame()
	require.True(t, ok)
	assert.Equal(t, fr, snap)
	assert.NoError(t, f.grid.Err())
}

func TestGrid_SingleColumnScroll(t *testing.T) {
	f := newFixture(t, desktop, func(o *Options[string, string]) {
		o.Rules = []breakpoint.Rule{{Query: breakpoint.Always(), Gap: 16}}
	})
	f.mount(t)
	f.surf.FireVisibility(true)
	f.surf.FireScroll(3520)
	f.sched.Flush()

	st := f.grid.State()
	assert.Equal(t, 20, st.OffsetIndex)
	assert.Equal(t, 1, st.ColumnCount)
	assert.Equal(t, 175984.0, st.TotalHeight)

	fr := f.last(t)
	assert.Equal(t, "item_20", fr.Cells[0])
	assert.Equal(t, 3520.0, fr.Top)
}

func TestGrid_ScrollWithinRowDoesNotRepaint(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	f.surf.FireVisibility(true)
	f.sched.Flush()
	require.Equal(t, 1, f.painter.Count(), "entering at scroll 0 changes nothing")

	f.surf.FireScroll(1000)
	f.sched.Flush()
	assert.Equal(t, 10, f.grid.State().OffsetIndex)
	assert.Equal(t, 2, f.painter.Count())

	f.surf.FireScroll(1100)
	f.sched.Flush()
	assert.Equal(t, 2, f.painter.Count())
}

func TestGrid_ContainerBelowFold(t *testing.T) {
	geom := desktop
	geom.OffsetTop = 5000
	f := newFixture(t, geom, nil)
	f.mount(t)
	f.surf.FireVisibility(true)
	f.surf.FireScroll(4000)
	f.sched.Flush()
	assert.Equal(t, 0, f.grid.State().OffsetIndex)

	f.surf.FireScroll(5000 + 2*192 + 5)
	f.sched.Flush()
	assert.Equal(t, 4, f.grid.State().OffsetIndex)
}

func TestGrid_HiddenContainerSkipsScroll(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)

	f.surf.FireScroll(3840)
	f.sched.Flush()
	assert.Equal(t, 0, f.grid.State().OffsetIndex, "scroll ignored before the container is visible")
	assert.Equal(t, 1, f.painter.Count())

	f.surf.FireVisibility(true)
	f.sched.Flush()
	assert.Equal(t, 40, f.grid.State().OffsetIndex, "entering the viewport catches up")
	assert.Equal(t, 3840.0, f.last(t).Top)

	f.surf.FireVisibility(false)
	f.surf.FireScroll(0)
	f.sched.Flush()
	assert.Equal(t, 40, f.grid.State().OffsetIndex)
}

func TestGrid_ResizeIsCoalesced(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	frames := f.sched.Frames

	for _, w := range []float64{700, 650, 600} {
		f.surf.FireResize(surface.Geometry{ClientWidth: w, ViewportWidth: w, ViewportHeight: 800})
	}
	assert.Equal(t, 1, f.sched.PendingFrames())
	f.sched.Flush()
	assert.Equal(t, frames+1, f.sched.Frames)

	l, _ := f.grid.Layout()
	assert.Equal(t, 32.0, l.Gap, "600px resolves the 500px rule")
	assert.Equal(t, 1, l.ColumnCount)
	assert.Equal(t, 191968.0, l.TotalHeight)
	assert.Equal(t, 2, f.painter.Count())
}

func TestGrid_ResizeWithSameGeometryIsNoop(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	before, _ := f.grid.Layout()

	f.surf.FireResize(desktop)
	f.sched.Flush()

	after, _ := f.grid.Layout()
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.painter.Count())
}

func TestGrid_ColumnChangeRealignsOffset(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	f.surf.FireVisibility(true)
	f.surf.FireScroll(3840)
	f.sched.Flush()
	require.Equal(t, 40, f.grid.State().OffsetIndex)

	// Off-screen, so only the realignment applies.
	f.surf.FireVisibility(false)
	f.surf.FireResize(surface.Geometry{ClientWidth: 1400, ViewportWidth: 1400, ViewportHeight: 800})
	f.sched.Flush()

	st := f.grid.State()
	assert.Equal(t, 3, st.ColumnCount)
	assert.Equal(t, 39, st.OffsetIndex)
	assert.Zero(t, st.OffsetIndex%st.ColumnCount)
	assert.Equal(t, 13*192.0, f.last(t).Top)
}

func TestGrid_ResizeWhileVisibleFollowsScroll(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	f.surf.FireVisibility(true)
	f.surf.FireScroll(3840)
	f.surf.FireResize(surface.Geometry{ClientWidth: 1400, ViewportWidth: 1400, ViewportHeight: 800})
	f.sched.Flush()

	st := f.grid.State()
	assert.Equal(t, 60, st.OffsetIndex)
	assert.Equal(t, 3840.0, f.last(t).Top)
}

func TestGrid_UnmeasuredSurfaceWaitsForResize(t *testing.T) {
	sched := scheduler.NewManual()
	surf := mocks.NewUnmeasuredSurface()
	painter := &mocks.RecordingPainter[string]{}
	g, err := New(Options[string, string]{
		Items:      keys("item", 10),
		Key:        func(s string) string { return s },
		Render:     func(s string) string { return s },
		CellHeight: 160,
		Rules:      cascade,
		Scheduler:  sched,
	})
	require.NoError(t, err)
	require.NoError(t, g.Mount(surf, painter))
	sched.Flush()

	_, ok := g.Layout()
	assert.False(t, ok)
	assert.Zero(t, painter.Count())
	assert.NoError(t, g.Err(), "missing geometry is not an error")

	surf.FireResize(desktop)
	sched.Flush()
	_, ok = g.Layout()
	assert.True(t, ok)
	assert.Equal(t, 1, painter.Count())
}

func TestGrid_LandOnLoad(t *testing.T) {
	geom := desktop
	geom.OffsetTop = 100
	session := anchor.NewSession()
	f := newFixture(t, geom, func(o *Options[string, string]) { o.Session = session })
	f.surf.SetAnchor("item_251")
	f.mount(t)

	assert.Equal(t, 1, f.sched.PendingTimers(), "landing waits for the delay")
	assert.Empty(t, f.surf.ScrollCalls())

	f.sched.Advance(DefaultLandingDelay)

	assert.Equal(t, []mocks.ScrollCall{{Y: 100 + 125*192}}, f.surf.ScrollCalls())
	assert.True(t, session.Consumed())
	assert.Equal(t, 250, f.grid.State().OffsetIndex, "item_251 rounds down to its row start")
	fr := f.last(t)
	assert.Equal(t, "item_250", fr.Cells[0])
	assert.Equal(t, "item_251", fr.Cells[1])

	// The scroll event echoing the landing keeps the same window.
	f.surf.FireVisibility(true)
	f.surf.FireScroll(100 + 125*192)
	f.sched.Flush()
	assert.Equal(t, 250, f.grid.State().OffsetIndex)
}

func TestGrid_LandOnLoadMiss(t *testing.T) {
	session := anchor.NewSession()
	f := newFixture(t, desktop, func(o *Options[string, string]) { o.Session = session })
	f.surf.SetAnchor("missing")
	f.mount(t)
	f.sched.Advance(DefaultLandingDelay)

	assert.Empty(t, f.surf.ScrollCalls())
	assert.False(t, session.Consumed())
	assert.Equal(t, 0, f.grid.State().OffsetIndex)
}

func TestGrid_NoAnchorSchedulesNothing(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	assert.Zero(t, f.sched.PendingTimers())
}

func TestGrid_LandingIsOneShotAcrossGrids(t *testing.T) {
	session := anchor.NewSession()
	sched := scheduler.NewManual()

	var surfaces []*mocks.FakeSurface
	for i := 0; i < 2; i++ {
		surf := mocks.NewFakeSurface(desktop)
		surf.SetAnchor("item_5")
		g, err := New(Options[string, string]{
			Items:      keys("item", 20),
			Key:        func(s string) string { return s },
			Render:     func(s string) string { return s },
			CellHeight: 160,
			Rules:      cascade,
			Session:    session,
			Scheduler:  sched,
		})
		require.NoError(t, err)
		require.NoError(t, g.Mount(surf, &mocks.RecordingPainter[string]{}))
		surfaces = append(surfaces, surf)
	}
	sched.Flush()
	sched.Advance(DefaultLandingDelay)

	total := len(surfaces[0].ScrollCalls()) + len(surfaces[1].ScrollCalls())
	assert.Equal(t, 1, total)
	assert.Len(t, surfaces[0].ScrollCalls(), 1, "the first grid to land wins")
	assert.True(t, session.Consumed())
}

func TestGrid_AnchorChangeAnimates(t *testing.T) {
	geom := desktop
	geom.OffsetTop = 50
	f := newFixture(t, geom, nil)
	f.mount(t)

	f.surf.FireAnchorChange("item_300")
	f.surf.FireAnchorChange("item_300")
	f.surf.FireAnchorChange("nope")
	f.sched.Flush()

	want := mocks.ScrollCall{Y: 50 + 150*192, Animated: true}
	assert.Equal(t, []mocks.ScrollCall{want, want}, f.surf.ScrollCalls())
	assert.Equal(t, 0, f.grid.State().OffsetIndex, "the window follows the scroll events, not the jump")
}

func TestGrid_SetItems(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)

	require.NoError(t, f.grid.SetItems(keys("row", 10)))
	f.sched.Flush()

	l, _ := f.grid.Layout()
	assert.Equal(t, 10, l.ItemCount)
	assert.Equal(t, 5*192.0-32, l.TotalHeight)
	assert.Equal(t, keys("row", 10), f.last(t).Cells)

	f.surf.FireAnchorChange("row_4")
	f.surf.FireAnchorChange("item_4")
	f.sched.Flush()
	assert.Equal(t, []mocks.ScrollCall{{Y: 2 * 192, Animated: true}}, f.surf.ScrollCalls())

	err := f.grid.SetItems([]string{"x", "x"})
	assert.ErrorIs(t, err, anchor.ErrDuplicateKey)
}

func TestGrid_SetItems_SameLength(t *testing.T) {
	f := newFixture(t, desktop, nil)
	f.mount(t)
	before, _ := f.grid.Layout()
	paints := f.painter.Count()

	require.NoError(t, f.grid.SetItems(keys("row", 1000)))
	f.sched.Flush()

	after, _ := f.grid.Layout()
	assert.Equal(t, before, after, "same count, same layout")
	assert.Equal(t, paints+1, f.painter.Count(), "new items are repainted under an unchanged layout")
	fr := f.last(t)
	require.NotEmpty(t, fr.Cells)
	assert.Equal(t, "row_0", fr.Cells[0])
	assert.Equal(t, keys("row", 1000)[:len(fr.Cells)], fr.Cells)

	// Scrolled windows repaint from the same offset.
	f.surf.FireVisibility(true)
	f.surf.FireScroll(10 * 192)
	f.sched.Flush()
	offset := f.grid.State().OffsetIndex
	require.Equal(t, 20, offset)

	require.NoError(t, f.grid.SetItems(keys("cell", 1000)))
	f.sched.Flush()
	fr = f.last(t)
	assert.Equal(t, offset, fr.FirstIndex)
	assert.Equal(t, fmt.Sprintf("cell_%d", offset), fr.Cells[0])
}

func TestGrid_SetItems_BeforeMount(t *testing.T) {
	f := newFixture(t, desktop, nil)

	require.NoError(t, f.grid.SetItems(keys("row", 10)))
	require.NotPanics(t, f.sched.Flush)
	assert.Zero(t, f.painter.Count(), "nothing is painted before Mount")
	_, ok := f.grid.Layout()
	assert.False(t, ok)

	f.mount(t)
	l, ok := f.grid.Layout()
	require.True(t, ok)
	assert.Equal(t, 10, l.ItemCount)
	assert.Equal(t, keys("row", 10), f.last(t).Cells)

	f.surf.FireAnchorChange("row_4")
	f.sched.Flush()
	assert.Equal(t, []mocks.ScrollCall{{Y: 2 * 192, Animated: true}}, f.surf.ScrollCalls())
}

func TestGrid_HaltsOnUnmatchedWidth(t *testing.T) {
	var reported []error
	f := newFixture(t, surface.Geometry{ClientWidth: 300, ViewportWidth: 300, ViewportHeight: 800},
		func(o *Options[string, string]) {
			o.Rules = []breakpoint.Rule{{Query: breakpoint.MinWidth(500), Gap: 8}}
			o.OnError = func(err error) { reported = append(reported, err) }
		})
	require.NoError(t, f.grid.Mount(f.surf, f.painter))
	require.Equal(t, 4, f.surf.Listeners())
	f.sched.Flush()

	err := f.grid.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, breakpoint.ErrNoMatchingRule))
	require.Len(t, reported, 1)
	assert.Equal(t, err, reported[0])

	assert.Zero(t, f.surf.Listeners(), "a halted grid releases its listeners")
	assert.Zero(t, f.painter.Count())

	// A later valid width does not revive it.
	f.surf.FireResize(desktop)
	f.sched.Flush()
	assert.Zero(t, f.painter.Count())
	assert.ErrorIs(t, f.grid.Mount(f.surf, f.painter), ErrHalted)
}

func TestGrid_Teardown(t *testing.T) {
	sched := scheduler.NewManual()
	surf := mocks.NewFakeSurface(desktop)
	surf.SetAnchor("item_10")
	painter := &mocks.MockPainter[string]{}
	painter.On("Paint", mock.Anything).Return()

	g, err := New(Options[string, string]{
		Items:      keys("item", 100),
		Key:        func(s string) string { return s },
		Render:     func(s string) string { return s },
		CellHeight: 160,
		Rules:      cascade,
		Scheduler:  sched,
	})
	require.NoError(t, err)
	require.NoError(t, g.Mount(surf, painter))
	assert.ErrorIs(t, g.Mount(surf, painter), ErrAlreadyMounted)
	sched.Flush()
	painter.AssertNumberOfCalls(t, "Paint", 1)
	require.Equal(t, 1, sched.PendingTimers())

	// An event already queued when teardown happens is dropped.
	surf.FireVisibility(true)
	surf.FireScroll(5000)
	g.Teardown()
	g.Teardown()
	sched.Flush()

	assert.Zero(t, surf.Listeners())
	assert.Zero(t, sched.PendingTimers(), "pending landing cancelled")
	sched.Advance(DefaultLandingDelay)
	assert.Empty(t, surf.ScrollCalls())
	painter.AssertNumberOfCalls(t, "Paint", 1)
	assert.ErrorIs(t, g.Mount(surf, painter), ErrClosed)
	assert.NoError(t, g.Err())
}
