// internal/vgrid/grid/options.go
package grid

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/vgrid/internal/vgrid/anchor"
	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
	"github.com/xkilldash9x/vgrid/internal/vgrid/scheduler"
)

// DefaultLandingDelay gives the host time to commit the container height
// before the one-shot landing scroll is issued.
const DefaultLandingDelay = 100 * time.Millisecond

var (
	ErrInvalidCellHeight = errors.New("cell height must be a positive finite number")
	ErrNoRules           = errors.New("at least one breakpoint rule is required")
	ErrInvalidOptions    = errors.New("invalid grid options")
	ErrAlreadyMounted    = errors.New("grid is already mounted")
	ErrClosed            = errors.New("grid has been torn down")
	// ErrHalted wraps the configuration error that stopped a grid.
	ErrHalted = errors.New("grid halted")
)

// Options configures a grid. Items, Key, CellHeight, Rules, Render and
// Scheduler are required.
type Options[T, R any] struct {
	// Name labels the grid in logs.
	Name string

	Items []T
	// Key extracts the unique anchor token of an item.
	Key func(T) string
	// Render turns an item into whatever the painter draws.
	Render func(T) R

	CellHeight float64
	// Rules are ordered from widest applicability to narrowest. They are
	// fixed for the lifetime of the grid.
	Rules []breakpoint.Rule

	// Session is shared by every grid on a page. A nil session gives the
	// grid a private one.
	Session *anchor.Session

	Scheduler    scheduler.Scheduler
	Logger       *zap.Logger
	LandingDelay time.Duration

	// OnError is called once, on the scheduler, when the grid halts.
	OnError func(error)
}

func (o *Options[T, R]) validate() error {
	switch {
	case o.Key == nil:
		return fmt.Errorf("%w: key function is nil", ErrInvalidOptions)
	case o.Render == nil:
		return fmt.Errorf("%w: render function is nil", ErrInvalidOptions)
	case o.Scheduler == nil:
		return fmt.Errorf("%w: scheduler is nil", ErrInvalidOptions)
	}
	if !(o.CellHeight > 0) || math.IsInf(o.CellHeight, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidCellHeight, o.CellHeight)
	}
	if len(o.Rules) == 0 {
		return ErrNoRules
	}
	if err := breakpoint.ValidateSet(o.Rules); err != nil {
		return err
	}
	if o.LandingDelay < 0 {
		return fmt.Errorf("%w: landing delay %s is negative", ErrInvalidOptions, o.LandingDelay)
	}
	return nil
}
