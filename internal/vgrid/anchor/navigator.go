// internal/vgrid/anchor/navigator.go
package anchor

import (
	"github.com/xkilldash9x/vgrid/internal/vgrid/layout"
	"github.com/xkilldash9x/vgrid/internal/vgrid/window"
)

// Target is where an anchor navigation lands.
type Target struct {
	// Resolved is the position of the anchored item.
	Resolved int
	// Index is Resolved rounded down to the start of its row. This is the
	// offset the window adopts, so the anchored item is always materialized.
	Index int
	// ScrollY is the absolute scroll position that brings the row to the top
	// of the viewport.
	ScrollY float64
}

// TargetFor computes the landing target for a resolved position.
func TargetFor(resolved int, containerTop float64, l layout.Layout) Target {
	idx := window.Align(resolved, l.ColumnCount)
	return Target{
		Resolved: resolved,
		Index:    idx,
		ScrollY:  containerTop + l.RowTop(idx),
	}
}

// Navigator turns anchors into scroll targets for one grid.
type Navigator struct {
	session *Session
	index   *Index
}

// NewNavigator binds a grid's key index to the page session.
func NewNavigator(session *Session, index *Index) *Navigator {
	return &Navigator{session: session, index: index}
}

// SetIndex swaps the key index after the item collection is replaced.
func (n *Navigator) SetIndex(index *Index) { n.index = index }

// LandOnLoad resolves the initial anchor once per session. It returns false,
// without consuming the session, when there is no anchor, the anchor is not
// in this grid, or another grid already landed.
func (n *Navigator) LandOnLoad(anchorKey string, containerTop float64, l layout.Layout) (Target, bool) {
	if anchorKey == "" || n.session.Consumed() || !l.Valid() {
		return Target{}, false
	}
	resolved, ok := n.index.Lookup(anchorKey)
	if !ok {
		return Target{}, false
	}
	if !n.session.Consume() {
		return Target{}, false
	}
	return TargetFor(resolved, containerTop, l), true
}

// JumpTo resolves an anchor change while the page is live. It is not gated by
// the session.
func (n *Navigator) JumpTo(anchorKey string, containerTop float64, l layout.Layout) (Target, bool) {
	if !l.Valid() {
		return Target{}, false
	}
	resolved, ok := n.index.Lookup(anchorKey)
	if !ok {
		return Target{}, false
	}
	return TargetFor(resolved, containerTop, l), true
}
