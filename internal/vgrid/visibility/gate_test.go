// internal/vgrid/visibility/gate_test.go
package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	t.Run("starts closed by default", func(t *testing.T) {
		g := NewGate(false)
		assert.False(t, g.ShouldProcessScroll())
	})

	t.Run("reports entering only on the crossing", func(t *testing.T) {
		g := NewGate(false)
		assert.True(t, g.Set(true))
		assert.True(t, g.ShouldProcessScroll())
		assert.False(t, g.Set(true), "already visible")

		assert.False(t, g.Set(false))
		assert.False(t, g.ShouldProcessScroll())
		assert.True(t, g.Set(true))
	})

	t.Run("can start open", func(t *testing.T) {
		g := NewGate(true)
		assert.True(t, g.ShouldProcessScroll())
		assert.False(t, g.Set(true))
	})
}
