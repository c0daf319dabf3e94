// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/vgrid/internal/catalog"
	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

// -- Surface Fake --

// ScrollCall records one scroll command issued to a FakeSurface.
type ScrollCall struct {
	Y        float64
	Animated bool
}

// FakeSurface is an in-memory surface.Surface. Tests drive it with the Fire*
// methods and inspect the scroll commands the grid issued.
type FakeSurface struct {
	mu       sync.Mutex
	scroll   float64
	geometry surface.Geometry
	measured bool
	anchor   string
	calls    []ScrollCall

	scrollHub surface.Hub[float64]
	resizeHub surface.Hub[float64]
	visHub    surface.Hub[bool]
	anchorHub surface.Hub[string]
}

var _ surface.Surface = (*FakeSurface)(nil)

// NewFakeSurface returns a measured surface with the given geometry.
func NewFakeSurface(g surface.Geometry) *FakeSurface {
	return &FakeSurface{geometry: g, measured: true}
}

// NewUnmeasuredSurface returns a surface whose geometry is not yet available.
func NewUnmeasuredSurface() *FakeSurface {
	return &FakeSurface{}
}

func (f *FakeSurface) ScrollOffset() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scroll
}

func (f *FakeSurface) Geometry() (surface.Geometry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geometry, f.measured
}

func (f *FakeSurface) OnScroll(fn func(float64)) surface.Unsubscribe { return f.scrollHub.Subscribe(fn) }
func (f *FakeSurface) OnResize(fn func(float64)) surface.Unsubscribe { return f.resizeHub.Subscribe(fn) }
func (f *FakeSurface) OnVisibility(fn func(bool)) surface.Unsubscribe {
	return f.visHub.Subscribe(fn)
}
func (f *FakeSurface) OnAnchorChange(fn func(string)) surface.Unsubscribe {
	return f.anchorHub.Subscribe(fn)
}

func (f *FakeSurface) Anchor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.anchor
}

// ScrollTo moves the fake viewport immediately and records the call. It does
// not emit a scroll event.
func (f *FakeSurface) ScrollTo(y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scroll = y
	f.calls = append(f.calls, ScrollCall{Y: y})
}

// AnimateScrollTo only records the call; FireScroll plays the animation.
func (f *FakeSurface) AnimateScrollTo(y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ScrollCall{Y: y, Animated: true})
}

// SetAnchor sets the current anchor without notifying listeners.
func (f *FakeSurface) SetAnchor(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anchor = key
}

// SetGeometry replaces the geometry without notifying listeners.
func (f *FakeSurface) SetGeometry(g surface.Geometry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geometry, f.measured = g, true
}

// FireScroll moves the viewport and notifies scroll listeners.
func (f *FakeSurface) FireScroll(y float64) {
	f.mu.Lock()
	f.scroll = y
	f.mu.Unlock()
	f.scrollHub.Emit(y)
}

// FireResize replaces the geometry and notifies resize listeners.
func (f *FakeSurface) FireResize(g surface.Geometry) {
	f.SetGeometry(g)
	f.resizeHub.Emit(g.ClientWidth)
}

func (f *FakeSurface) FireVisibility(visible bool) { f.visHub.Emit(visible) }

// FireAnchorChange sets the anchor and notifies anchor listeners.
func (f *FakeSurface) FireAnchorChange(key string) {
	f.SetAnchor(key)
	f.anchorHub.Emit(key)
}

// ScrollCalls returns the scroll commands issued so far.
func (f *FakeSurface) ScrollCalls() []ScrollCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ScrollCall(nil), f.calls...)
}

// Listeners is the number of attached listeners across every event kind.
func (f *FakeSurface) Listeners() int {
	return f.scrollHub.Len() + f.resizeHub.Len() + f.visHub.Len() + f.anchorHub.Len()
}

// -- Painter Mocks --

// MockPainter mocks surface.Painter.
type MockPainter[R any] struct {
	mock.Mock
}

func (m *MockPainter[R]) Paint(f surface.Frame[R]) {
	m.Called(f)
}

// RecordingPainter keeps every frame it is handed.
type RecordingPainter[R any] struct {
	mu     sync.Mutex
	frames []surface.Frame[R]
}

func (p *RecordingPainter[R]) Paint(f surface.Frame[R]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f)
}

// Frames returns a copy of the recorded frames.
func (p *RecordingPainter[R]) Frames() []surface.Frame[R] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]surface.Frame[R](nil), p.frames...)
}

// Last returns the most recent frame, or false when nothing was painted.
func (p *RecordingPainter[R]) Last() (surface.Frame[R], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return surface.Frame[R]{}, false
	}
	return p.frames[len(p.frames)-1], true
}

// Count is the number of frames painted.
func (p *RecordingPainter[R]) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// -- Catalog Mocks --

// MockSource mocks catalog.Source.
type MockSource struct {
	mock.Mock
}

var _ catalog.Source = (*MockSource)(nil)

func (m *MockSource) Sections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSource) Load(ctx context.Context, section string) ([]catalog.Item, error) {
	args := m.Called(ctx, section)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSeedingSource is a MockSource that also accepts Seed.
type MockSeedingSource struct {
	MockSource
}

var _ catalog.Seeder = (*MockSeedingSource)(nil)

func (m *MockSeedingSource) Seed(ctx context.Context, items []catalog.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// -- Config Mock --

// MockConfig mocks config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	return m.Called().Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Grid() config.GridConfig {
	return m.Called().Get(0).(config.GridConfig)
}

func (m *MockConfig) Terminal() config.TerminalConfig {
	return m.Called().Get(0).(config.TerminalConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	return m.Called().Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Catalog() config.CatalogConfig {
	return m.Called().Get(0).(config.CatalogConfig)
}

func (m *MockConfig) SetBrowserHeadless(b bool) { m.Called(b) }
func (m *MockConfig) SetCatalogDriver(d string) { m.Called(d) }
func (m *MockConfig) SetCatalogDSN(dsn string)  { m.Called(dsn) }
