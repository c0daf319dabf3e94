// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/vgrid/internal/observability"
)

// createTempConfig writes content to a config file in a fresh temp dir.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// newTestRoot builds a root command reading only the given config file, with
// output captured. The global logger is reset around the test.
func newTestRoot(t *testing.T, configContent string, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", createTempConfig(t, configContent)}, args...))
	return root, &out
}
