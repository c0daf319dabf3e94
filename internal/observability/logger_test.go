// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/vgrid/internal/config"
)

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Color:       true,
		}, zapcore.AddSync(&buf))
		GetLogger().Named("grid").Info("Layout computed.")
		Sync()

		out := buf.String()
		assert.Contains(t, out, "\x1b[34mINFO\x1b[0m")
		assert.Contains(t, out, "TestService.grid.")
		assert.Contains(t, out, "Layout computed.")
	})

	t.Run("console logger without colors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "Plain"}, zapcore.AddSync(&buf))
		GetLogger().Warn("Grid halted.")
		Sync()

		assert.Contains(t, buf.String(), "\tWARN\t")
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("json logger", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, zapcore.AddSync(&buf))
		GetLogger().Warn("Anchor not in this grid.", zap.String("anchor", "item_9"))
		GetLogger().Debug("filtered by level")
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "one JSON object expected")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "item_9", entry["anchor"])
	})

	t.Run("file only", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		path := filepath.Join(t.TempDir(), "vgrid.log")

		InitializeFileOnly(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1})
		GetLogger().Error("Grid halted on configuration error.")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"Grid halted on configuration error."`)
	})

	t.Run("initializes once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, zapcore.AddSync(&buf))
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&buf))

		assert.Same(t, first, GetLogger())
		GetLogger().Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestIgnorableSyncError(t *testing.T) {
	stdout := &os.PathError{Op: "sync", Path: "/dev/stdout", Err: syscall.EINVAL}
	assert.True(t, ignorableSyncError(stdout))
	assert.True(t, ignorableSyncError(fmt.Errorf("tee: %w", syscall.ENOTTY)))
	assert.False(t, ignorableSyncError(syscall.ENOSPC))
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	assert.NotNil(t, GetLogger())
	assert.Nil(t, globalLogger.Load(), "the fallback is not stored")
}
