package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	t.Run("writes to file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "app.log")

		logg := New("debug", file)
		logg.Info("simulation finished", "policy", "ucb")
		require.NoError(t, logg.Sync())

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		require.Contains(t, string(data), `"msg":"simulation finished"`)
		require.Contains(t, string(data), `"policy":"ucb"`)
	})

	t.Run("respects level", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		logg := Wrap(zap.New(core))

		logg.Debug("hidden")
		logg.Info("hidden")
		logg.Warn("shown", "arm", 2)
		logg.Error("shown too")

		require.Equal(t, 2, logs.Len())
		require.Equal(t, int64(2), logs.All()[0].ContextMap()["arm"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logg := New("loud", "")
		require.True(t, logg.GetInstance().Core().Enabled(zap.InfoLevel))
		require.False(t, logg.GetInstance().Core().Enabled(zap.DebugLevel))
	})
}
