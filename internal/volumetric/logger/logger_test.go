package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	t.Run("none is a no-op logger", func(t *testing.T) {
		l, err := GetLogger(LogLevelNone)
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("honours the level", func(t *testing.T) {
		l, err := GetLogger(LogLevelWarn)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := GetLogger("chatty")
		assert.Error(t, err)
		assert.Panics(t, func() { MustGetLogger("chatty") })
	})
}
