// internal/browser/host.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/config"
)

// ErrBrowserClosed is returned by Run when Chrome goes away on its own.
var ErrBrowserClosed = errors.New("browser: closed")

// Evaluator runs a script in the page.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string) error
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, expression string) error

func (f EvaluatorFunc) Evaluate(ctx context.Context, expression string) error {
	return f(ctx, expression)
}

// chromeEvaluator evaluates against the tab bound to ctx.
var chromeEvaluator = EvaluatorFunc(func(ctx context.Context, expression string) error {
	return chromedp.Run(ctx, chromedp.Evaluate(expression, nil))
})

// Host drives a Chrome tab showing a column of grid sections. The page
// reports scroll, resize, visibility and hash changes through a CDP binding;
// the host fans them out to the sections and sends frames and scroll
// commands back in the order they were issued.
type Host struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	mu       sync.Mutex
	sections []*Section
	snap     snapshot
	measured bool
	anchor   string
	ready    chan struct{}
	isReady  bool

	qmu    sync.Mutex
	queue  []string
	notify chan struct{}
}

// NewHost returns a host that will open the page on anchor, given without
// the leading '#'.
func NewHost(cfg config.BrowserConfig, anchor string, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		cfg:    cfg,
		logger: logger.Named("browser"),
		anchor: anchor,
		ready:  make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
}

// AddSection registers the next container on the page. Sections must be
// added in the order RenderPage lays them out.
func (h *Host) AddSection(title string) *Section {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Section{host: h, index: len(h.sections), title: title}
	h.sections = append(h.sections, s)
	return s
}

// Titles lists the section titles for RenderPage.
func (h *Host) Titles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.sections))
	for i, s := range h.sections {
		out[i] = s.title
	}
	return out
}

// Ready is closed once the page bridge has reported in.
func (h *Host) Ready() <-chan struct{} { return h.ready }

// Anchor is the current page anchor.
func (h *Host) Anchor() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.anchor
}

// Run launches Chrome, loads page and relays commands until ctx is done.
func (h *Host) Run(ctx context.Context, page string) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, AllocatorOptions(h.cfg)...)
	defer cancelAlloc()

	sugar := h.logger.Sugar()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)
	defer cancelTab()

	// The first Run allocates the browser. It must not carry the startup
	// timeout, or the tab would close when the timeout context is released.
	if err := chromedp.Run(tabCtx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	chromedp.ListenTarget(tabCtx, h.handleEvent)

	startCtx, cancelStart := context.WithTimeout(tabCtx, h.cfg.StartupTimeout)
	err := chromedp.Run(startCtx,
		runtime.Enable(),
		runtime.AddBinding(BindingName),
		chromedp.Navigate(PageURL(page, h.Anchor())),
	)
	cancelStart()
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	h.logger.Info("Page loaded.", zap.Int("sections", len(h.Titles())), zap.Bool("headless", h.cfg.Headless))

	if err := h.RunCommands(tabCtx, chromeEvaluator); err != nil {
		return err
	}
	if ctx.Err() == nil {
		return ErrBrowserClosed
	}
	return nil
}

// RunCommands evaluates queued commands in order until ctx is done. Failed
// commands are logged and skipped.
func (h *Host) RunCommands(ctx context.Context, ev Evaluator) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.notify:
		}

		for {
			h.qmu.Lock()
			batch := h.queue
			h.queue = nil
			h.qmu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, script := range batch {
				if err := ev.Evaluate(ctx, script); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					h.logger.Warn("Page command failed.", zap.Error(err))
				}
			}
		}
	}
}

// Pending is the number of commands not yet handed to the page.
func (h *Host) Pending() int {
	h.qmu.Lock()
	defer h.qmu.Unlock()
	return len(h.queue)
}

func (h *Host) command(method string, args ...any) {
	script, err := call(method, args...)
	if err != nil {
		h.logger.Error("Failed to build page command.", zap.String("method", method), zap.Error(err))
		return
	}
	h.qmu.Lock()
	h.queue = append(h.queue, script)
	h.qmu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// handleEvent is called on the chromedp event goroutine and must not block.
func (h *Host) handleEvent(ev any) {
	switch e := ev.(type) {
	case *runtime.EventBindingCalled:
		if e.Name != BindingName {
			return
		}
		if err := h.Dispatch([]byte(e.Payload)); err != nil {
			h.logger.Warn("Dropped page message.", zap.Error(err))
		}
	case *runtime.EventExceptionThrown:
		if e.ExceptionDetails != nil {
			h.logger.Warn("Page exception.", zap.String("text", e.ExceptionDetails.Text))
		}
	}
}

// Dispatch applies one bridge message: it refreshes the cached geometry and
// notifies the sections concerned.
func (h *Host) Dispatch(payload []byte) error {
	msg, err := decodeMessage(payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	sections := append([]*Section(nil), h.sections...)
	switch msg.Type {
	case msgVisibility:
		if msg.Grid < 0 || msg.Grid >= len(sections) {
			h.mu.Unlock()
			return fmt.Errorf("%w: visibility for grid %d", ErrBadMessage, msg.Grid)
		}
	case msgResize:
		if msg.Grid != allGrids && (msg.Grid < 0 || msg.Grid >= len(sections)) {
			h.mu.Unlock()
			return fmt.Errorf("%w: resize for grid %d", ErrBadMessage, msg.Grid)
		}
	case msgReady, msgScroll, msgLayout, msgAnchor:
	default:
		h.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	h.snap, h.measured = msg.Layout, true
	anchorChanged := false
	if msg.Type == msgReady || msg.Type == msgAnchor {
		anchorChanged = msg.Anchor != h.anchor
		h.anchor = msg.Anchor
	}
	firstReady := msg.Type == msgReady && !h.isReady
	if firstReady {
		h.isReady = true
		close(h.ready)
	}
	h.mu.Unlock()

	switch msg.Type {
	case msgReady:
		h.logger.Debug("Page bridge ready.", zap.String("anchor", msg.Anchor))
		for _, s := range sections {
			s.resizeHub.Emit(h.widthOf(s))
		}
	case msgScroll, msgLayout:
		for _, s := range sections {
			s.scrollHub.Emit(msg.Layout.ScrollY)
		}
	case msgResize:
		for _, s := range sections {
			if msg.Grid == allGrids || msg.Grid == s.index {
				s.resizeHub.Emit(h.widthOf(s))
			}
		}
	case msgVisibility:
		sections[msg.Grid].visHub.Emit(msg.Visible)
	case msgAnchor:
		if anchorChanged && msg.Anchor != "" {
			h.logger.Debug("Anchor changed.", zap.String("anchor", msg.Anchor))
			for _, s := range sections {
				s.anchorHub.Emit(msg.Anchor)
			}
		}
	}
	return nil
}

func (h *Host) widthOf(s *Section) float64 {
	g, _ := s.Geometry()
	return g.ClientWidth
}

// Sections returns the sections in page order.
func (h *Host) Sections() []*Section {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Section(nil), h.sections...)
}
