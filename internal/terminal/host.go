// internal/terminal/host.go
package terminal

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/config"
)

// ErrQuit is returned by Run when the user asked to leave.
var ErrQuit = errors.New("terminal: quit requested")

const (
	// margin is the blank column kept on each side of the containers.
	margin = 1
	// statusRows is the height of the status line at the bottom.
	statusRows = 1
)

// Host lays out a column of sections on a tcell screen and turns terminal
// input into the scroll, resize, visibility and anchor events the grids
// listen for.
//
// The document is the vertical stack of sections. Each section takes one
// title row, the container rows reported by its last frame and one blank
// spacer row. Positions are measured in screen rows.
type Host struct {
	screen tcell.Screen
	cfg    config.TerminalConfig
	logger *zap.Logger

	mu        sync.Mutex
	sections  []*Section
	width     int
	height    int
	scroll    float64
	anchor    string
	prompting bool
	prompt    []rune
	anim      *animation

	wake chan struct{}
}

type animation struct {
	from, to    float64
	step, steps int
}

// NewHost wraps an initialized screen. anchor is the key the grids land on at
// startup, without the leading '#'.
func NewHost(screen tcell.Screen, cfg config.TerminalConfig, anchor string, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		screen: screen,
		cfg:    cfg,
		logger: logger.Named("terminal"),
		anchor: anchor,
		wake:   make(chan struct{}, 1),
	}
}

// AddSection appends a titled container to the document.
func (h *Host) AddSection(title string) *Section {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Section{host: h, index: len(h.sections), title: title}
	h.sections = append(h.sections, s)
	return s
}

// Sections returns the sections in document order.
func (h *Host) Sections() []*Section {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Section(nil), h.sections...)
}

// Scroll is the document row shown at the top of the screen.
func (h *Host) Scroll() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scroll
}

// Anchor is the current anchor key.
func (h *Host) Anchor() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.anchor
}

// Animating reports whether an animated scroll is in progress.
func (h *Host) Animating() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.anim != nil
}

// Run polls terminal events and redraws until ctx is done or the user quits.
// It finalizes the screen on return.
func (h *Host) Run(ctx context.Context) error {
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	defer h.screen.Fini()

	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	h.logger.Debug("Terminal host running.", zap.Int("sections", len(h.Sections())))
	h.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if h.HandleEvent(ev) {
				h.logger.Info("Quit requested.")
				return ErrQuit
			}
		case <-h.wake:
		case <-tick:
			h.StepAnimation()
		}

		if h.Animating() {
			if tick == nil {
				ticker = time.NewTicker(h.cfg.AnimationInterval)
				tick = ticker.C
			}
		} else {
			stopTicker()
		}
		h.Draw()
	}
}

// HandleEvent applies one terminal event and reports whether it asked to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, ht := ev.Size()
		h.resize(w, ht)
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		step := float64(h.cfg.WheelStep)
		btn := ev.Buttons()
		switch {
		case btn&tcell.WheelUp != 0:
			h.scrollBy(-step)
		case btn&tcell.WheelDown != 0:
			h.scrollBy(step)
		}
	}
	return false
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	h.mu.Lock()
	prompting := h.prompting
	page := float64(max(1, h.viewportHeightLocked()-1))
	h.mu.Unlock()

	if prompting {
		h.handlePromptKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyUp:
		h.scrollBy(-1)
	case tcell.KeyDown:
		h.scrollBy(1)
	case tcell.KeyPgUp:
		h.scrollBy(-page)
	case tcell.KeyPgDn:
		h.scrollBy(page)
	case tcell.KeyHome:
		h.setScroll(0, true)
	case tcell.KeyEnd:
		h.setScroll(math.Inf(1), true)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			h.scrollBy(-1)
		case 'j':
			h.scrollBy(1)
		case 'g':
			h.setScroll(0, true)
		case 'G':
			h.setScroll(math.Inf(1), true)
		case '#':
			h.mu.Lock()
			h.prompting, h.prompt = true, nil
			h.mu.Unlock()
			h.requestRedraw()
		}
	}
	return false
}

func (h *Host) handlePromptKey(ev *tcell.EventKey) {
	h.mu.Lock()
	var submitted string
	switch ev.Key() {
	case tcell.KeyEscape:
		h.prompting, h.prompt = false, nil
	case tcell.KeyEnter:
		submitted = string(h.prompt)
		h.prompting, h.prompt = false, nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(h.prompt); n > 0 {
			h.prompt = h.prompt[:n-1]
		}
	case tcell.KeyRune:
		h.prompt = append(h.prompt, ev.Rune())
	}
	h.mu.Unlock()

	if submitted != "" {
		h.SetAnchor(submitted)
	}
	h.requestRedraw()
}

// SetAnchor changes the anchor and notifies every section, as a hash change
// would in a browser. Setting the same anchor again is not a change.
func (h *Host) SetAnchor(key string) {
	h.mu.Lock()
	if key == h.anchor {
		h.mu.Unlock()
		return
	}
	h.anchor = key
	sections := append([]*Section(nil), h.sections...)
	h.mu.Unlock()

	h.logger.Debug("Anchor changed.", zap.String("anchor", key))
	for _, s := range sections {
		s.anchorHub.Emit(key)
	}
}

func (h *Host) resize(w, ht int) {
	h.mu.Lock()
	h.width, h.height = w, ht
	client := float64(h.clientWidthLocked())
	sections := append([]*Section(nil), h.sections...)
	h.mu.Unlock()

	h.logger.Debug("Terminal resized.", zap.Int("width", w), zap.Int("height", ht))
	for _, s := range sections {
		s.resizeHub.Emit(client)
	}
	h.layoutChanged()
	h.screen.Sync()
}

func (h *Host) scrollBy(d float64) {
	h.mu.Lock()
	y := h.scroll + d
	h.mu.Unlock()
	h.setScroll(y, true)
}

// setScroll moves the viewport. A user scroll cancels any running animation.
func (h *Host) setScroll(y float64, user bool) {
	h.mu.Lock()
	if user {
		h.anim = nil
	}
	y = h.clampLocked(y)
	changed := y != h.scroll
	h.scroll = y
	sections := append([]*Section(nil), h.sections...)
	h.mu.Unlock()

	if changed {
		for _, s := range sections {
			s.scrollHub.Emit(y)
		}
		h.updateVisibility()
	}
	h.requestRedraw()
}

func (h *Host) animateTo(y float64) {
	h.mu.Lock()
	h.anim = &animation{from: h.scroll, to: y, steps: max(1, h.cfg.AnimationSteps)}
	h.mu.Unlock()
	h.requestRedraw()
}

// StepAnimation advances an animated scroll by one tick and reports whether
// more ticks remain.
func (h *Host) StepAnimation() bool {
	h.mu.Lock()
	a := h.anim
	if a == nil {
		h.mu.Unlock()
		return false
	}
	a.step++
	done := a.step >= a.steps
	y := a.to
	if !done {
		t := float64(a.step) / float64(a.steps)
		y = a.from + (a.to-a.from)*easeOutCubic(t)
	} else {
		h.anim = nil
	}
	h.mu.Unlock()

	h.setScroll(y, false)
	return !done
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// layoutChanged re-clamps the scroll after the document changed size,
// tells every section to re-read its geometry and recomputes visibility.
func (h *Host) layoutChanged() {
	h.mu.Lock()
	y := h.clampLocked(h.scroll)
	h.scroll = y
	sections := append([]*Section(nil), h.sections...)
	h.mu.Unlock()

	for _, s := range sections {
		s.scrollHub.Emit(y)
	}
	h.updateVisibility()
}

type visChange struct {
	s       *Section
	visible bool
}

func (h *Host) updateVisibility() {
	h.mu.Lock()
	var changes []visChange
	if h.width > 0 && h.height > 0 {
		top, bottom := int(h.scroll), int(h.scroll)+h.viewportHeightLocked()
		for _, s := range h.sections {
			ctop := h.containerTopLocked(s.index)
			// An empty container still occupies its first row for the
			// purpose of intersecting the viewport.
			cbottom := ctop + max(1, s.heightLocked())
			v := ctop < bottom && cbottom > top
			if !s.visKnown || v != s.visible {
				s.visKnown, s.visible = true, v
				changes = append(changes, visChange{s, v})
			}
		}
	}
	h.mu.Unlock()

	for _, c := range changes {
		c.s.visHub.Emit(c.visible)
	}
}

func (h *Host) requestRedraw() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *Host) clampLocked(y float64) float64 {
	limit := float64(max(0, h.documentHeightLocked()-h.viewportHeightLocked()))
	return math.Round(math.Max(0, math.Min(y, limit)))
}

func (h *Host) viewportHeightLocked() int {
	return max(0, h.height-statusRows)
}

func (h *Host) clientWidthLocked() int {
	return max(0, h.width-2*margin)
}

// containerTopLocked is the document row of section i's first container row.
func (h *Host) containerTopLocked(i int) int {
	top := 0
	for _, s := range h.sections[:i] {
		top += s.heightLocked() + 2
	}
	return top + 1
}

func (h *Host) documentHeightLocked() int {
	n := 0
	for _, s := range h.sections {
		n += s.heightLocked() + 2
	}
	return n
}
