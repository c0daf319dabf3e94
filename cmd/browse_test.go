// File: cmd/browse_test.go
package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/vgrid/internal/config"
)

// useSimulationScreen makes the browse command draw to an in-memory screen.
func useSimulationScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	prev := newScreen
	newScreen = func() (tcell.Screen, error) { return sim, nil }
	t.Cleanup(func() { newScreen = prev })
	return sim
}

// screenText returns the simulation screen contents, one line per row.
func screenText(sim tcell.SimulationScreen) string {
	cells, w, h := sim.GetContents()
	if w == 0 || len(cells) < w*h {
		return ""
	}
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(string(runes))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestBrowseCmd_DrawsAndQuits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	sim := useSimulationScreen(t)
	root, _ := newTestRoot(t, "", "browse", "--anchor", "new_7")

	errc := make(chan error, 1)
	go func() { errc <- root.ExecuteContext(context.Background()) }()

	// The default 80x25 screen leaves 24 rows of viewport; new_7 starts row
	// 3 of the New container, which sits at document row 10.
	require.Eventually(t, func() bool {
		return strings.Contains(screenText(sim), "row 22/3027")
	}, 5*time.Second, 10*time.Millisecond, "never landed on the anchor")

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		assert.NoError(t, err, "quitting is a clean exit")
	case <-time.After(5 * time.Second):
		t.Fatal("browse did not exit after q")
	}
}

func TestRunBrowse_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	sim := tcell.NewSimulationScreen("UTF-8")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- runBrowse(ctx, config.NewDefaultConfig(), sim, "", zaptest.NewLogger(t))
	}()

	require.Eventually(t, func() bool {
		text := screenText(sim)
		return strings.Contains(text, "Changed (3)") && strings.Contains(text, "New (20)")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("browse did not stop on cancel")
	}
}

func TestRunBrowse_CatalogError(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SetCatalogDriver("mongo")

	err := runBrowse(context.Background(), cfg, tcell.NewSimulationScreen("UTF-8"), "", zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open catalog")
}
