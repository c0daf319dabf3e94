// File: cmd/layout_test.go
package cmd

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(key, value string) string {
	return fmt.Sprintf("%-15s %s\n", key, value)
}

func TestLayoutCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "browser page with anchor",
			args: []string{"--width", "1232", "--scroll", "868", "--container-top", "100", "--anchor-index", "101"},
			want: line("rule", "(min-width: 960px) gap=32 min=420") +
				line("columns", "2") +
				line("row height", "192") +
				line("total height", "143968") +
				line("visible length", "16") +
				line("window", "8..24 of 1500") +
				line("anchor", "101 -> offset 100, scroll 9700"),
		},
		{
			name: "terminal screen",
			args: []string{"--host", "terminal", "--viewport-width", "80", "--width", "78", "--viewport-height", "23"},
			want: line("rule", "(min-width: 80px) gap=1 min=36") +
				line("columns", "2") +
				line("row height", "4") +
				line("total height", "2999") +
				line("visible length", "18") +
				line("window", "0..18 of 1500"),
		},
		{
			name: "narrow viewport falls back to one column",
			args: []string{"--viewport-width", "400", "--items", "3", "--scroll", "5000"},
			want: line("rule", "all gap=16") +
				line("columns", "1") +
				line("row height", "176") +
				line("total height", "512") +
				line("visible length", "8") +
				line("window", "3..3 of 3"),
		},
		{
			name: "container width defaults to the viewport",
			args: []string{"--viewport-width", "1400", "--items", "0"},
			want: line("rule", "(min-width: 960px) gap=32 min=420") +
				line("columns", "3") +
				line("row height", "192") +
				line("total height", "0") +
				line("visible length", "24") +
				line("window", "0..0 of 0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, out := newTestRoot(t, "", append([]string{"layout"}, tt.args...)...)
			require.NoError(t, root.ExecuteContext(context.Background()))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestLayoutCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown host", []string{"--host", "tui"}, `unknown host "tui"`},
		{"anchor past the end", []string{"--items", "10", "--anchor-index", "10"}, "anchor index 10 is outside 10 items"},
		{"negative items", []string{"--items", "-1"}, "items must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _ := newTestRoot(t, "", append([]string{"layout"}, tt.args...)...)
			err := root.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "got %q", err.Error())
		})
	}
}

// TestLayoutCmd_ConfiguredRules uses rules from the config file.
func TestLayoutCmd_ConfiguredRules(t *testing.T) {
	cfg := `browser:
  cell_height: 100
  rules:
    - query: all
      gap: 10
      min_column_width: 200
`
	root, out := newTestRoot(t, cfg, "layout", "--viewport-width", "630", "--items", "7")
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t,
		line("rule", "all gap=10 min=200")+
			line("columns", "3")+
			line("row height", "110")+
			line("total height", "320")+
			line("visible length", "33")+
			line("window", "0..7 of 7"),
		out.String())
}
